package provider

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// thinkSplitter separates <think>...</think> reasoning (DeepSeek-R1, QwQ,
// Magistral) from answer text. Tags may arrive split across deltas, so a
// possible partial tag at the end of the buffer is held back.
type thinkSplitter struct {
	buf     strings.Builder
	inThink bool
}

// feed consumes one delta and returns the answer and thinking text that
// are safe to emit.
func (s *thinkSplitter) feed(delta string) (answer, thinking string) {
	s.buf.WriteString(delta)
	text := s.buf.String()
	s.buf.Reset()

	var out, think strings.Builder
	for {
		tag := thinkOpen
		if s.inThink {
			tag = thinkClose
		}
		idx := strings.Index(text, tag)
		if idx == -1 {
			break
		}
		if s.inThink {
			think.WriteString(text[:idx])
		} else {
			out.WriteString(text[:idx])
		}
		text = text[idx+len(tag):]
		s.inThink = !s.inThink
	}

	tag := thinkOpen
	if s.inThink {
		tag = thinkClose
	}
	keep := partialSuffix(text, tag)
	emit := text[:len(text)-keep]
	s.buf.WriteString(text[len(text)-keep:])

	if s.inThink {
		think.WriteString(emit)
	} else {
		out.WriteString(emit)
	}
	return out.String(), think.String()
}

// flush returns whatever is still buffered.
func (s *thinkSplitter) flush() (answer, thinking string) {
	rest := s.buf.String()
	s.buf.Reset()
	if s.inThink {
		return "", rest
	}
	return rest, ""
}

// partialSuffix returns the length of the longest suffix of text that is a
// proper prefix of tag.
func partialSuffix(text, tag string) int {
	max := len(tag) - 1
	if max > len(text) {
		max = len(text)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(text, tag[:n]) {
			return n
		}
	}
	return 0
}
