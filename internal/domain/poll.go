package domain

import "time"

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

type Poll struct {
	ID        string         `json:"id"`
	Question  string         `json:"question"`
	Options   []string       `json:"options"`
	Votes     map[ConnID]int `json:"-"`
	CreatedBy ConnID         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	Active    bool           `json:"active"`
}

// Tally returns the vote count per option index.
func (p *Poll) Tally() []int {
	out := make([]int, len(p.Options))
	for _, opt := range p.Votes {
		if opt >= 0 && opt < len(out) {
			out[opt]++
		}
	}
	return out
}
