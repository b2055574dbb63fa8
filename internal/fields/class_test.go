package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClass_Key(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{ClassAuthority, "CQBH"},
		{ClassSignature, "Chu_Ky"},
		{ClassPosition, "Chuc_Vu"},
		{ClassUrgency, "Do_Khan"},
		{ClassDocType, "Loai_VB"},
		{ClassContent, "ND_Chinh"},
		{ClassIssueDate, "Ngay_BH"},
		{ClassRecipients, "Noi_Nhan"},
		{ClassRefNumber, "So_Ki_Hieu"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.class.Key())
		})
	}
}

func TestClass_Valid(t *testing.T) {
	assert.True(t, ClassAuthority.Valid())
	assert.True(t, ClassRefNumber.Valid())
	assert.False(t, Class(-1).Valid())
	assert.False(t, Class(9).Valid())
}

func TestClass_Key_Unknown(t *testing.T) {
	assert.Empty(t, Class(42).Key())
}

func TestParseClass(t *testing.T) {
	c, err := ParseClass("Ngay_BH")
	require.NoError(t, err)
	assert.Equal(t, ClassIssueDate, c)

	_, err = ParseClass("bogus")
	assert.Error(t, err)
}

func TestParseClass_RoundTrip(t *testing.T) {
	for c := Class(0); c < NumClasses; c++ {
		got, err := ParseClass(c.Key())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
