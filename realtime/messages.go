package realtime

import "time"

// Frame types on the robot link. Requests flow client to robot, events flow
// robot to client. Every frame is a JSON text message with a "type" field.
const (
	frameSpeakText       = "speak.text"
	frameSpeakStop       = "speak.stop"
	frameGestureStart    = "gesture.start"
	frameExpressionStart = "expression.start"
	frameAttendUser      = "attend.user"
	frameAttendLocation  = "attend.location"
	frameLEDSet          = "led.set"
	frameListenStart     = "listen.start"
	frameListenStop      = "listen.stop"

	frameHearStart   = "hear.start"
	frameHearPartial = "hear.partial"
	frameHearEnd     = "hear.end"
	frameSpeakStart  = "speak.start"
	frameSpeakEnd    = "speak.end"
	frameError       = "error"
)

type speakTextFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type gestureStartFrame struct {
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Intensity  float64 `json:"intensity,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
}

type expressionStartFrame struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type attendLocationFrame struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

type ledSetFrame struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type listenStartFrame struct {
	Type              string  `json:"type"`
	ConcatSpeech      bool    `json:"concat_speech"`
	ReturnPartial     bool    `json:"return_partial"`
	StopOnNoSpeech    bool    `json:"stop_on_no_speech"`
	StopOnUserEnd     bool    `json:"stop_on_user_end"`
	StopOnRobotStart  bool    `json:"stop_on_robot_start"`
	ResumeOnRobotEnd  bool    `json:"resume_on_robot_end"`
	EndSpeechTimeoutS float64 `json:"end_speech_timeout_s"`
}

// controlFrame covers the requests that carry no payload beyond their type
// (speak.stop, attend.user, listen.stop).
type controlFrame struct {
	Type string `json:"type"`
}

type hearTextFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type speakStartEventFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type speakEndEventFrame struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Aborted bool   `json:"aborted"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ListenOptions shape a listen.start request. The defaults keep the
// microphone open across robot speech: utterances are concatenated, partial
// transcripts stream in, listening pauses while the robot talks and resumes
// when it finishes, and an utterance ends after a silence timeout rather
// than on the first pause.
type ListenOptions struct {
	ConcatSpeech     bool
	ReturnPartial    bool
	StopOnNoSpeech   bool
	StopOnUserEnd    bool
	StopOnRobotStart bool
	ResumeOnRobotEnd bool
	EndSpeechTimeout time.Duration
}

func defaultListenOptions() ListenOptions {
	return ListenOptions{
		ConcatSpeech:     true,
		ReturnPartial:    true,
		StopOnNoSpeech:   false,
		StopOnUserEnd:    false,
		StopOnRobotStart: true,
		ResumeOnRobotEnd: true,
		EndSpeechTimeout: 2500 * time.Millisecond,
	}
}
