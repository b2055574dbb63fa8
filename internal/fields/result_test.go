package fields

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSet_Set_AuthoritySplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantUpper string
		wantLower string
	}{
		{
			name:      "two lines",
			text:      "UBND TỈNH NGHỆ AN\nSỞ GIÁO DỤC VÀ ĐÀO TẠO",
			wantUpper: "UBND TỈNH NGHỆ AN",
			wantLower: "SỞ GIÁO DỤC VÀ ĐÀO TẠO",
		},
		{
			name:      "three lines join lower",
			text:      "UBND TỈNH\nSỞ NỘI VỤ\nPHÒNG TỔ CHỨC",
			wantUpper: "UBND TỈNH",
			wantLower: "SỞ NỘI VỤ PHÒNG TỔ CHỨC",
		},
		{
			name:      "single line goes to upper",
			text:      "UBND THÀNH PHỐ HÀ NỘI",
			wantUpper: "UBND THÀNH PHỐ HÀ NỘI",
			wantLower: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r ResultSet
			r.Set(ClassAuthority, tt.text)
			assert.Equal(t, tt.wantUpper, r.AuthorityUpper)
			assert.Equal(t, tt.wantLower, r.AuthorityLower)
		})
	}
}

func TestResultSet_Set_TrimsText(t *testing.T) {
	var r ResultSet
	r.Set(ClassDocType, "  QUYẾT ĐỊNH  ")
	assert.Equal(t, "QUYẾT ĐỊNH", r.DocType)
}

func TestResultSet_Merge_FirstNonEmptyWins(t *testing.T) {
	page0 := ResultSet{DocType: "QUYẾT ĐỊNH", RefNumber: ""}
	page1 := ResultSet{DocType: "CÔNG VĂN", RefNumber: "123/QĐ-UBND", Signature: "Nguyễn Văn A"}
	page2 := ResultSet{RefNumber: "999/KH", Signature: "Trần Thị B"}

	var merged ResultSet
	for _, page := range []ResultSet{page0, page1, page2} {
		merged.Merge(page)
	}

	assert.Equal(t, "QUYẾT ĐỊNH", merged.DocType)
	assert.Equal(t, "123/QĐ-UBND", merged.RefNumber)
	assert.Equal(t, "Nguyễn Văn A", merged.Signature)
}

func TestResultSet_Finalize_UrgencyDefault(t *testing.T) {
	var r ResultSet
	r.Finalize()
	assert.Equal(t, "Không", r.Urgency)
}

func TestResultSet_Finalize_KeepsDetectedUrgency(t *testing.T) {
	r := ResultSet{Urgency: "Hỏa tốc"}
	r.Finalize()
	assert.Equal(t, "Hỏa tốc", r.Urgency)
}

func TestResultSet_JSON_AllKeysPresent(t *testing.T) {
	var r ResultSet
	r.Finalize()

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{
		"Loai_VB", "So_Ki_Hieu", "Ngay_BH", "CQBH_tren", "CQBH_duoi",
		"Chuc_Vu", "Chu_Ky", "ND_Chinh", "Do_Khan", "Noi_Nhan",
	} {
		_, ok := m[key]
		assert.True(t, ok, "missing key %s", key)
	}
	assert.Equal(t, "Không", m["Do_Khan"])
}

func TestResultSet_Empty(t *testing.T) {
	var r ResultSet
	assert.True(t, r.Empty())
	r.Set(ClassContent, "v/v tổ chức hội nghị")
	assert.False(t, r.Empty())
}
