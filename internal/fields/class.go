// Package fields defines the semantic region classes of Vietnamese
// administrative documents and the field result set extracted from them.
package fields

import "fmt"

// Class identifies a semantic region class. The numeric values are fixed by
// the detection model and must not be reordered.
type Class int

const (
	ClassAuthority  Class = 0 // CQBH, issuing authority block
	ClassSignature  Class = 1 // Chu_Ky
	ClassPosition   Class = 2 // Chuc_Vu
	ClassUrgency    Class = 3 // Do_Khan
	ClassDocType    Class = 4 // Loai_VB
	ClassContent    Class = 5 // ND_Chinh
	ClassIssueDate  Class = 6 // Ngay_BH
	ClassRecipients Class = 7 // Noi_Nhan
	ClassRefNumber  Class = 8 // So_Ki_Hieu

	NumClasses = 9
)

// UrgencyDefault is the sentinel reported when no urgency mark is detected.
const UrgencyDefault = "Không"

var classKeys = [NumClasses]string{
	"CQBH",
	"Chu_Ky",
	"Chuc_Vu",
	"Do_Khan",
	"Loai_VB",
	"ND_Chinh",
	"Ngay_BH",
	"Noi_Nhan",
	"So_Ki_Hieu",
}

// Valid reports whether c is a known class id.
func (c Class) Valid() bool { return c >= 0 && c < NumClasses }

// Key returns the canonical key for the class ("CQBH", "Ngay_BH", ...).
// Unknown classes return the empty string.
func (c Class) Key() string {
	if !c.Valid() {
		return ""
	}
	return classKeys[c]
}

func (c Class) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classKeys[c]
}

// ParseClass resolves a canonical key back to its class id.
func ParseClass(key string) (Class, error) {
	for i, k := range classKeys {
		if k == key {
			return Class(i), nil
		}
	}
	return -1, fmt.Errorf("unknown region class %q", key)
}
