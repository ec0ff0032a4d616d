package domain

// PolicyEngine evaluates a booking policy expression against a request fact.
// The concrete implementation lives in infrastructure; the travel service only
// cares about the yes/no answer.
type PolicyEngine interface {
	Evaluate(expression string, fact map[string]interface{}) (bool, error)
}
