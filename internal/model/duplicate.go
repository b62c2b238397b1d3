package model

// Relationship describes how the members of a duplicate group relate.
type Relationship string

// Relationship constants.
const (
	RelationshipNone            Relationship = "NONE"
	RelationshipSimpleDuplicate Relationship = "SIMPLE_DUPLICATE"
	RelationshipPaymentCycle    Relationship = "PAYMENT_CYCLE"
)

// SignatureKind groups duplicate-detection signatures.
type SignatureKind string

const (
	// SignaturePayment marks a settlement of a card balance.
	SignaturePayment SignatureKind = "payment"
	// SignatureTransfer marks money moving between the user's own accounts.
	SignatureTransfer SignatureKind = "transfer"
	// SignaturePurchase marks known purchase merchants a transfer may settle.
	SignaturePurchase SignatureKind = "purchase"
)

// DuplicateSignature is a known pattern used by payment-cycle detection.
type DuplicateSignature struct {
	Name    string        `mapstructure:"name" yaml:"name"`
	Kind    SignatureKind `mapstructure:"kind" yaml:"kind"`
	Pattern string        `mapstructure:"pattern" yaml:"pattern"`
}

// Settles reports whether the signature describes the settling side of a cycle.
func (s DuplicateSignature) Settles() bool {
	return s.Kind == SignaturePayment || s.Kind == SignatureTransfer
}

// DuplicateGroup is a connected set of related transactions.
type DuplicateGroup struct {
	ID               string
	RepresentativeID string
	Relationship     Relationship
	MemberIDs        []string
	Similarity       float64
}
