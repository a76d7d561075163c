package ml

// Classifier is a trained binary model consuming one feature row at a time.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
	NumFeatures() int
	Type() string
}
