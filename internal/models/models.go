package models

// Position is a camera world position. Field names match the capitalised
// keys Rocket League writes in exported camera path files.
type Position struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
	Z float64 `json:"Z"`
}

// Rotation is a camera orientation in Unreal rotation units
// (182.04 units per degree).
type Rotation struct {
	Pitch int `json:"Pitch"`
	Roll  int `json:"Roll"`
	Yaw   int `json:"Yaw"`
}

// Keyframe is a single camera keyframe as stored in a path file.
type Keyframe struct {
	FOV       float64  `json:"FOV"`
	Frame     int      `json:"Frame"`
	Position  Position `json:"Position"`
	Rotation  Rotation `json:"Rotation"`
	Timestamp float64  `json:"Timestamp"`
	Weight    float64  `json:"Weight"`
}

// PathFile is a camera path file discovered in the library directory.
type PathFile struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`      // absolute path on disk
	Keyframes int     `json:"keyframes"` // 0 if the file failed to parse
	Duration  float64 `json:"duration"`  // seconds, 0 if unparsable
}

// PathStats summarises a camera path.
type PathStats struct {
	Keyframes int     `json:"keyframes"`
	Duration  float64 `json:"duration"`
	MinTime   float64 `json:"min_time"`
	MaxTime   float64 `json:"max_time"`
}

// ConfigEntry is a key-value pair stored in the database.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PresetOp is one step of a transform preset pipeline.
type PresetOp struct {
	Op   string             `json:"op"`             // e.g. "fov-add", "mirror", "reverse"
	Args map[string]float64 `json:"args,omitempty"` // numeric parameters
	Axis string             `json:"axis,omitempty"` // mirror only
}

// Preset is a named, ordered transform pipeline stored in the database.
type Preset struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Ops     []PresetOp `json:"ops"`
	Enabled bool       `json:"enabled"`
	IsSeed  bool       `json:"isSeed"`
}
