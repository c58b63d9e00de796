// Package views renders the HTML pages of the dashboard as templ components.
package views

// Limit choices offered by the profile form.
const (
	MinLimit  = 50
	MaxLimit  = 1000
	LimitStep = 50
)

// HomeForm holds the values and message shown on the landing page.
type HomeForm struct {
	Username string
	Limit    int
	Error    string
}

func (f HomeForm) selectedLimit() int {
	if f.Limit == 0 {
		return MinLimit
	}
	return f.Limit
}

func limitChoices() []int {
	choices := make([]int, 0, (MaxLimit-MinLimit)/LimitStep+1)
	for n := MinLimit; n <= MaxLimit; n += LimitStep {
		choices = append(choices, n)
	}
	return choices
}
