package evaluation

import "fmt"

type Band string

const (
	BandExceptional Band = "Exceptional"
	BandExcellent   Band = "Excellent"
	BandGood        Band = "Good"
	BandFair        Band = "Fair"
	BandWeak        Band = "Weak"
	BandPoor        Band = "Poor"
	BandCritical    Band = "Critical"
)

type band struct {
	min     int
	band    Band
	message string
}

var bands = []band{
	{85, BandExceptional, "Exceptional performance. Keep up the excellent work."},
	{75, BandExcellent, "Excellent performance. Strong understanding of the subject."},
	{65, BandGood, "Good performance. A little more practice will push this higher."},
	{55, BandFair, "Fair performance. Review the weaker topics regularly."},
	{45, BandWeak, "Weak performance. Needs extra practice and teacher follow-up."},
	{35, BandPoor, "Poor performance. Requires close support and remedial work."},
}

const criticalMessage = "Critical performance. Immediate intervention is needed in this subject."

// BandFor 单科成绩分档，只取决于该科成绩本身
func BandFor(score int) (Band, string) {
	for _, b := range bands {
		if score >= b.min {
			return b.band, b.message
		}
	}
	return BandCritical, criticalMessage
}

// Feedback 格式: "<subject>: <score> – <message>"
func Feedback(subject string, score int) string {
	_, msg := BandFor(score)
	return fmt.Sprintf("%s: %d – %s", subject, score, msg)
}
