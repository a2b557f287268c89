package scam

// Combine merges a text result and a URL result. The higher score wins
// instead of adding up; reasons keep text-then-URL order without repeats and
// tags are unioned. AnalyzedURL comes from the URL result.
func Combine(text, url Result) Result {
	b := newBuilder()

	b.reason(text.Reasons...)
	b.reason(url.Reasons...)
	b.tag(text.Tags...)
	b.tag(url.Tags...)

	b.total = max(text.Score, url.Score)
	b.analyzedURL = url.AnalyzedURL

	return b.result()
}
