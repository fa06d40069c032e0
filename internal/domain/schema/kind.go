package schema

// Kind is the declared type of a property.
type Kind string

// Property kinds.
const (
	String     Kind = "string"
	Number     Kind = "number"
	Enum       Kind = "enum"
	Bool       Kind = "bool"
	Time       Kind = "time"
	Object     Kind = "object"
	Collection Kind = "collection"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	switch k {
	case String, Number, Enum, Bool, Time, Object, Collection:
		return true
	default:
		return false
	}
}

// IsScalar reports whether values of this kind are leaves.
func (k Kind) IsScalar() bool { return k.IsValid() && !k.IsNested() }

// IsNested reports whether the kind refers to a user-defined element type.
func (k Kind) IsNested() bool { return k == Object || k == Collection }

// IsNumeric reports whether filter operands must be numeric literals.
// Enums travel as their ordinal.
func (k Kind) IsNumeric() bool { return k == Number || k == Enum }

// IsText reports whether the kind is full-text searchable.
func (k Kind) IsText() bool { return k == String }
