package report

import "testing"

func TestExtractArea(t *testing.T) {
	tests := []struct {
		name    string
		prop    string
		address string
		want    string
	}{
		{"factory suffix", "名古屋工場第1社宅", "", "名古屋工場"},
		{"sales office suffix", "仙台営業所寮", "", "仙台営業所"},
		{"branch suffix", "大阪支店社宅A", "", "大阪支店"},
		{"site office suffix", "苫小牧出張所宿舎", "", "苫小牧出張所"},
		{"address city fallback", "グリーンハイツ101", "愛知県名古屋市中区丸の内1-2-3", "名古屋市"},
		{"address without prefecture", "コーポ桜", "豊田市若林東町1-1", "豊田市"},
		{"nothing to extract", "ハイム", "1-2-3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractArea(tt.prop, tt.address)
			if got != tt.want {
				t.Errorf("extractArea(%q, %q) = %q, want %q", tt.prop, tt.address, got, tt.want)
			}
		})
	}
}
