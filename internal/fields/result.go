package fields

import "strings"

// ResultSet holds the extracted text for every canonical document field.
// All keys are always present in the JSON form; unset fields are empty
// strings except urgency, which reports the "Không" sentinel after
// Finalize. The issuing authority block is split into an upper and a lower
// line, mirroring the two-row letterhead of administrative documents.
type ResultSet struct {
	DocType        string `json:"Loai_VB" yaml:"Loai_VB"`
	RefNumber      string `json:"So_Ki_Hieu" yaml:"So_Ki_Hieu"`
	IssueDate      string `json:"Ngay_BH" yaml:"Ngay_BH"`
	AuthorityUpper string `json:"CQBH_tren" yaml:"CQBH_tren"`
	AuthorityLower string `json:"CQBH_duoi" yaml:"CQBH_duoi"`
	Position       string `json:"Chuc_Vu" yaml:"Chuc_Vu"`
	Signature      string `json:"Chu_Ky" yaml:"Chu_Ky"`
	Content        string `json:"ND_Chinh" yaml:"ND_Chinh"`
	Urgency        string `json:"Do_Khan" yaml:"Do_Khan"`
	Recipients     string `json:"Noi_Nhan" yaml:"Noi_Nhan"`
}

// Set records text for a class. Authority text is split on line breaks:
// the first line becomes the upper part and the remaining lines, joined by
// spaces, the lower part. Single-line authority text lands in the upper
// part only.
func (r *ResultSet) Set(class Class, text string) {
	text = strings.TrimSpace(text)
	switch class {
	case ClassAuthority:
		parts := strings.Split(text, "\n")
		if len(parts) > 1 {
			r.AuthorityUpper = strings.TrimSpace(parts[0])
			r.AuthorityLower = strings.TrimSpace(strings.Join(parts[1:], " "))
		} else {
			r.AuthorityUpper = text
		}
	case ClassSignature:
		r.Signature = text
	case ClassPosition:
		r.Position = text
	case ClassUrgency:
		r.Urgency = text
	case ClassDocType:
		r.DocType = text
	case ClassContent:
		r.Content = text
	case ClassIssueDate:
		r.IssueDate = text
	case ClassRecipients:
		r.Recipients = text
	case ClassRefNumber:
		r.RefNumber = text
	}
}

// Merge folds other into r with first-non-empty-wins semantics: a field
// already populated in r is never overwritten. Callers merge page results
// in ascending page order so earlier pages take precedence.
func (r *ResultSet) Merge(other ResultSet) {
	fill(&r.DocType, other.DocType)
	fill(&r.RefNumber, other.RefNumber)
	fill(&r.IssueDate, other.IssueDate)
	fill(&r.AuthorityUpper, other.AuthorityUpper)
	fill(&r.AuthorityLower, other.AuthorityLower)
	fill(&r.Position, other.Position)
	fill(&r.Signature, other.Signature)
	fill(&r.Content, other.Content)
	fill(&r.Urgency, other.Urgency)
	fill(&r.Recipients, other.Recipients)
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// Finalize applies field defaults after all pages have been merged.
func (r *ResultSet) Finalize() {
	if r.Urgency == "" {
		r.Urgency = UrgencyDefault
	}
}

// Empty reports whether no field carries any text.
func (r *ResultSet) Empty() bool {
	return *r == ResultSet{}
}
