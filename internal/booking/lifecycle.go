package booking

import "github.com/Keta808/backendTesis/internal/model"

// transitionMap lists the allowed lifecycle transitions. Activa is the only
// state with outgoing edges; Cancelada, Finalizada and Realizada are
// terminal.
var transitionMap = map[model.Status][]model.Status{
	model.StatusActiva: {
		model.StatusCancelada,
		model.StatusFinalizada,
		model.StatusRealizada,
	},
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to model.Status) bool {
	for _, allowed := range transitionMap[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
