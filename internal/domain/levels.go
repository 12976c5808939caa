package domain

// ReadingLevel is the discretized audience bucket derived from the
// Flesch-Kincaid grade of the book text.
type ReadingLevel string

// Reading level buckets. Grade thresholds: <=6 elementary, <=8 middle
// school, <=12 high school, <=16 college, else graduate. Texts too short
// to score are indeterminate.
const (
	LevelIndeterminate ReadingLevel = "indeterminate"
	LevelElementary    ReadingLevel = "elementary"
	LevelMiddleSchool  ReadingLevel = "middle_school"
	LevelHighSchool    ReadingLevel = "high_school"
	LevelCollege       ReadingLevel = "college"
	LevelGraduate      ReadingLevel = "graduate"
)

// Difficulty is the coarse complexity bucket derived from the combined
// complexity score.
type Difficulty string

// Difficulty buckets, split at scores 30/50/70/90.
const (
	DifficultyIndeterminate Difficulty = "indeterminate"
	DifficultyVeryEasy      Difficulty = "very_easy"
	DifficultyEasy          Difficulty = "easy"
	DifficultyModerate      Difficulty = "moderate"
	DifficultyHard          Difficulty = "hard"
	DifficultyVeryHard      Difficulty = "very_hard"
)
