package chain

// Identifier is the content hash of a block or transaction, hex encoded.
type Identifier string

// ZeroID is the lowest value in the identifier space and never
// identifies a real entity.
const ZeroID Identifier = ""

func (id Identifier) String() string {
	return string(id)
}

// IsZero returns true if the identifier is unset.
func (id Identifier) IsZero() bool {
	return id == ZeroID
}

// PublicKey is the hex encoded public key of a delegate.
type PublicKey string

func (pk PublicKey) String() string {
	return string(pk)
}

// IdentifierList is a list of identifiers with set helpers.
type IdentifierList []Identifier

// Lookup builds a set from the list.
func (il IdentifierList) Lookup() map[Identifier]struct{} {
	lookup := make(map[Identifier]struct{}, len(il))
	for _, id := range il {
		lookup[id] = struct{}{}
	}
	return lookup
}

// Contains returns true if the list contains the given identifier.
func (il IdentifierList) Contains(target Identifier) bool {
	for _, id := range il {
		if id == target {
			return true
		}
	}
	return false
}

// Strings returns the list as plain strings, mostly for logging.
func (il IdentifierList) Strings() []string {
	strs := make([]string, 0, len(il))
	for _, id := range il {
		strs = append(strs, id.String())
	}
	return strs
}
