// Package space defines the closed set of distance metrics a vector field
// can be configured with and the score transform each one applies.
//
// Scores are always "higher is more relevant". For the distance-like
// metrics the transform is 1/(1+d). Inner product uses a piecewise form
// over the negated dot product so that ranking stays consistent with the
// backends' own scaling of raw inner products:
//
//	nd >= 0: score = 1 / (1 + nd)
//	nd <  0: score = -nd + 1
//
// The negated dot product is not a metric: it is neither symmetric in the
// usual sense of a distance nor does it satisfy the triangle inequality.
// Do not use InnerProduct distances for anything other than ranking.
//
// # Usage
//
//	st, err := space.Parse("cosinesimil")
//	score, err := st.ScoreFloats(query, doc)
package space
