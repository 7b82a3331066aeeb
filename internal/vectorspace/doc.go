// Package vectorspace implements character n-gram TF-IDF retrieval.
//
// Fit builds a frozen vocabulary and IDF weighting over a text corpus;
// Transform projects arbitrary text into that space; RankAll and
// RankSubset score a query against the whole corpus or a restricted
// candidate subset by cosine similarity. Subset scores depend on the
// query and document vectors only, but rankings over different subsets
// are not comparable and are never normalized to suggest otherwise.
//
// N-grams are generated per whitespace-separated word with a boundary
// space padded on each side, so "pro" yields " p", "pr", "ro", "o ",
// " pr", "pro", "ro ". This keeps prefix and suffix information that
// plain character windows lose.
package vectorspace
