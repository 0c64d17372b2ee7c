package service

import (
	"sync"

	"gorm.io/datatypes"
)

// AnswerBufferService holds each user's in-progress questionnaire session:
// answers staged by question id, not yet pushed through the versioning
// store. The buffer is process-local state, cleared only after a successful
// generation so a failed attempt can be retried without re-entering answers.
type AnswerBufferService interface {
	Stage(userID, questionID string, answer datatypes.JSON)
	Snapshot(userID string) map[string]datatypes.JSON
	Clear(userID string)
}

type answerBufferService struct {
	mu      sync.RWMutex
	buffers map[string]map[string]datatypes.JSON
}

func NewAnswerBufferService() AnswerBufferService {
	return &answerBufferService{buffers: make(map[string]map[string]datatypes.JSON)}
}

func (s *answerBufferService) Stage(userID, questionID string, answer datatypes.JSON) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffers[userID] == nil {
		s.buffers[userID] = make(map[string]datatypes.JSON)
	}
	s.buffers[userID][questionID] = answer
}

// Snapshot returns a copy of the user's staged answers. Callers operate on
// the copy so concurrent staging cannot mutate an in-flight generation.
func (s *answerBufferService) Snapshot(userID string) map[string]datatypes.JSON {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buffer := s.buffers[userID]
	snapshot := make(map[string]datatypes.JSON, len(buffer))
	for questionID, answer := range buffer {
		snapshot[questionID] = answer
	}
	return snapshot
}

func (s *answerBufferService) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, userID)
}
