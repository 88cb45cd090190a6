package caption

import "github.com/ccp-p/caption-sentencer/pkg/models"

func ms(v int64) *int64 {
	return &v
}

func event(start, duration int64, fragments ...models.Fragment) models.RawEvent {
	return models.RawEvent{StartMs: ms(start), DurationMs: ms(duration), Fragments: fragments}
}

func frag(text string, offset int64) models.Fragment {
	return models.Fragment{Text: text, OffsetMs: ms(offset)}
}

func newlineEvent(start int64) models.RawEvent {
	return models.RawEvent{
		StartMs:         ms(start),
		DurationMs:      ms(10),
		IsAppendNewline: true,
		Fragments:       []models.Fragment{{Text: `\n`}},
	}
}

func block(start, end int64, tokens ...models.Token) models.NormalizedBlock {
	b := models.NormalizedBlock{StartMs: start, EndMs: end, Tokens: tokens}
	for _, t := range tokens {
		b.Text += t.Text
	}
	return b
}

func tok(text string, start int64) models.Token {
	return models.Token{Text: text, StartMs: start}
}

func defaultParams() SegmentParams {
	return DefaultOptions().SegmentParams()
}
