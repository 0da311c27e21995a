package report

// StripTags removes every "<...>" span that has at least one byte between
// the brackets and no '<' inside it. It is one pass over the input: removed
// spans are cut from the output buffer, so a tag exposed by an inner removal
// ("<<a>b>") is removed too and the result is a fixed point.
// This is a readability filter, not an HTML sanitizer.
func StripTags(s string) string {
	out := make([]byte, 0, len(s))
	var open []int // positions of '<' in out with no later '<'

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '<':
			open = append(open, len(out))
			out = append(out, c)
		case '>':
			if n := len(open); n > 0 && len(out)-open[n-1] > 1 {
				out = out[:open[n-1]]
				open = open[:n-1]
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
