// Package sentiment classifies incoming interaction text into one of five
// sentiment buckets plus context flags. The classifier is stateless and
// side-effect-free.
package sentiment
