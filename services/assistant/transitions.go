package assistant

import (
	"fmt"

	"aviachat/models"
)

// transitions is the single source of truth for the wizard's shape. The
// flow is strictly linear with two explicit back edges; everything else
// is rejected.
var transitions = map[models.Stage][]models.Stage{
	models.StageSearch:        {models.StageSearch, models.StageSelected},
	models.StageSelected:      {models.StageSearch, models.StagePassengerInfo},
	models.StagePassengerInfo: {models.StagePassengerInfo, models.StageConfirm},
	models.StageConfirm:       {models.StagePassengerInfo, models.StageConfirm, models.StageCompleted},
	models.StageCompleted:     {models.StageSearch},
}

func canTransition(from, to models.Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// moveTo applies a transition and the clearing rules that go with it.
// Back edges drop the data of the stage being abandoned; a return to
// search keeps the cached results so they can be redisplayed without a
// new network call.
func moveTo(sess *models.BookingSession, to models.Stage) error {
	if !canTransition(sess.Stage, to) {
		return fmt.Errorf("invalid wizard transition %s -> %s", sess.Stage, to)
	}

	switch {
	case sess.Stage == models.StageSelected && to == models.StageSearch:
		sess.SelectedOffer = nil
		sess.Pricing = nil
	case sess.Stage == models.StageConfirm && to == models.StagePassengerInfo:
		sess.ConfirmKey = ""
	}

	sess.Stage = to
	return nil
}

// checkStageInvariants guards the data the later stages rely on.
func checkStageInvariants(sess *models.BookingSession) error {
	switch sess.Stage {
	case models.StageSelected, models.StagePassengerInfo:
		if sess.SelectedOffer == nil {
			return fmt.Errorf("stage %s requires a selected offer", sess.Stage)
		}
	case models.StageConfirm, models.StageCompleted:
		if sess.SelectedOffer == nil {
			return fmt.Errorf("stage %s requires a selected offer", sess.Stage)
		}
		if len(sess.Passengers) == 0 {
			return fmt.Errorf("stage %s requires at least one passenger", sess.Stage)
		}
	}
	return nil
}
