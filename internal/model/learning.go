package model

import "time"

// LearningState is a clone's single active-training slot.
// Invariant: IsLearning implies Learning != 0 and StartTime before EndTime
// (equal times are possible when banked points already cover the level).
type LearningState struct {
	Learning   uint32 // skill ID being trained, 0 = idle
	IsLearning bool
	StartTime  time.Time
	EndTime    time.Time
}

// LearningLog is the accumulated progress of one clone in one skill.
// SkillLevel only moves up; LearningPoints accrue toward the next level and
// reset to 0 when a level completes. Points banked by an early stop survive
// until the level is finished.
type LearningLog struct {
	SkillLevel     int32
	LearningPoints int64
}
