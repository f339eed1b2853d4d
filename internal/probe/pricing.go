package probe

// price is USD per million tokens
type price struct {
	In  float64
	Out float64
}

// Published per-MTok rates for the probed models. Unlisted models produce
// samples without a cost figure.
var pricing = map[string]price{
	"gpt-4o-mini":               {In: 0.15, Out: 0.60},
	"claude-3-5-haiku-20241022": {In: 0.80, Out: 4.00},
	"deepseek-chat":             {In: 0.27, Out: 1.10},
}

// Cost estimates the USD cost of one exchange. The second return is false
// when no pricing is known for the model.
func Cost(model string, inTokens, outTokens int64) (float64, bool) {
	p, ok := pricing[model]
	if !ok {
		return 0, false
	}
	return (float64(inTokens)*p.In + float64(outTokens)*p.Out) / 1_000_000, true
}
