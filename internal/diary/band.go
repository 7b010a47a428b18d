package diary

// Band 是月历上按分数着色的档位。
type Band string

const (
	BandLow   Band = "low"
	BandFair  Band = "fair"
	BandGood  Band = "good"
	BandGreat Band = "great"
)

// BandFor 按 30/50/70 三个阈值划分分数档位，阈值本身归入较低一档。
func BandFor(score int) Band {
	switch {
	case score <= 30:
		return BandLow
	case score <= 50:
		return BandFair
	case score <= 70:
		return BandGood
	default:
		return BandGreat
	}
}
