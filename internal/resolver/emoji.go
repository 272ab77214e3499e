package resolver

// emojisForRating maps a rating scale size to its curated emoji sequence,
// worst to best. Sizes outside 3–10 get the minimal two-emoji set.
func emojisForRating(rateCount int) []string {
	switch rateCount {
	case 10:
		return []string{"😡", "😠", "😖", "☹️", "😕", "😐", "🙂", "😊", "😃", "🤩"}
	case 9:
		return []string{"😠", "😖", "☹️", "😕", "😐", "🙂", "😊", "😃", "🤩"}
	case 8:
		return []string{"😖", "☹️", "😕", "😐", "🙂", "😊", "😃", "🤩"}
	case 7:
		return []string{"😖", "☹️", "😕", "😐", "🙂", "😊", "😃"}
	case 6:
		return []string{"☹️", "😕", "😐", "🙂", "😊", "😃"}
	case 5:
		return []string{"☹️", "😕", "😐", "🙂", "😊"}
	case 4:
		return []string{"☹️", "😐", "🙂", "😊"}
	case 3:
		return []string{"☹️", "😐", "😊"}
	default:
		return []string{"☹️", "😊"}
	}
}
