package scenario

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alias1177/LevelBot/models"
)

// Stamp assigns run identity to a finished scenario. Kept out of Evaluate so
// the pipeline itself stays deterministic: the same input always produces the
// same unstamped scenario.
func Stamp(s *models.Scenario) *models.Scenario {
	s.RunID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	return s
}
