package topology

import "github.com/aretw0/pipeview/pkg/domain"

// Subscribers maps each stage name to the stages that list it as upstream,
// in input order. Dangling upstream names are indexed too.
func Subscribers(stages []domain.Stage) map[string][]string {
	out := make(map[string][]string)
	for _, s := range stages {
		for _, up := range s.UpstreamNames() {
			out[up] = append(out[up], s.Name)
		}
	}
	return out
}

// StagesPerFreight maps a freight name to the stages currently running it.
// Stages without freight are grouped under "".
func StagesPerFreight(stages []domain.Stage) map[string][]string {
	out := make(map[string][]string)
	for _, s := range stages {
		f := s.CurrentFreightName()
		out[f] = append(out[f], s.Name)
	}
	return out
}
