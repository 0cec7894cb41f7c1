package dto

// Utterance identifies one speech synthesis request.
type Utterance struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// VoiceStatus mirrors the client's speech recognition and synthesis state.
type VoiceStatus struct {
	Listening  bool       `json:"listening"`
	Speaking   bool       `json:"speaking"`
	Transcript string     `json:"transcript"`
	Utterance  *Utterance `json:"utterance,omitempty"`
	// Cancelled is the utterance the client must stop before speaking.
	Cancelled *Utterance `json:"cancelled,omitempty"`
}

// TranscriptRequest carries recognised speech from the client.
type TranscriptRequest struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// SpeakRequest asks the client to read text aloud.
type SpeakRequest struct {
	Text string `json:"text"`
}

// SpeakDoneRequest reports that an utterance finished playing.
type SpeakDoneRequest struct {
	ID int `json:"id"`
}
