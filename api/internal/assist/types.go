package assist

// Operation names one AI-backed call.
type Operation string

const (
	OpReport    Operation = "report"
	OpSymptoms  Operation = "symptoms"
	OpChat      Operation = "chat"
	OpSpeech    Operation = "speech"
	OpHospitals Operation = "hospitals"
	OpTips      Operation = "tips"
)

// Profile holds the personalization fields resolved by the caller.
type Profile struct {
	Age        int      `json:"age,omitempty"`
	Weight     float64  `json:"weight,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Symptoms   string   `json:"symptoms,omitempty"`
}

// Turn is one prior message of a conversation.
type Turn struct {
	Role string `json:"role"` // "user" | "model"
	Text string `json:"text"`
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Prediction struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// ReportAnalysis is the decoded report_analysis contract.
type ReportAnalysis struct {
	Summary         string       `json:"summary"`
	Predictions     []Prediction `json:"predictions"`
	HealthScore     int          `json:"healthScore"`
	Recommendations []string     `json:"recommendations"`
}

type Diagnosis struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
	Description string  `json:"description"`
	Specialist  string  `json:"specialist"`
}

// SymptomPrediction is the decoded symptom_prediction contract.
type SymptomPrediction struct {
	Predictions []Diagnosis `json:"predictions"`
}

// Tips is the decoded health_tips contract.
type Tips struct {
	Tips []string `json:"tips"`
}

// Place is a grounding reference returned with a lookup.
type Place struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type HospitalLookup struct {
	Text   string  `json:"text"`
	Places []Place `json:"places"`
}

// Audio is synthesized speech.
type Audio struct {
	Data     []byte
	MIMEType string
}

func (a Audio) Empty() bool { return len(a.Data) == 0 }

type ChatRequest struct {
	Message string
	History []Turn
	Profile *Profile
	Voice   bool
}

type ChatReply struct {
	Text  string `json:"text"`
	Audio Audio  `json:"-"`
}
