package board

// Politeness is the interruption level of a live region.
type Politeness string

// PolitenessPolite waits for the reader to finish before speaking.
const PolitenessPolite Politeness = "polite"

// LiveRegion holds the latest assistive-technology announcement of a column.
// Each Announce replaces the previous text; there is no history.
type LiveRegion struct {
	text     string
	observer func(string)
}

// NewLiveRegion constructs a live region. observer, when set, sees every announcement.
func NewLiveRegion(observer func(string)) *LiveRegion {
	return &LiveRegion{observer: observer}
}

// Announce overwrites the current message.
func (l *LiveRegion) Announce(msg string) {
	l.text = msg
	if l.observer != nil {
		l.observer(msg)
	}
}

// Text returns the current message.
func (l *LiveRegion) Text() string { return l.text }

// Politeness returns the politeness level.
func (l *LiveRegion) Politeness() Politeness { return PolitenessPolite }
