package core

// ClassifiedEvent is a directory audit event reduced to report form.
// Information carries the rendered target/initiator summary, or the
// NotRelevant marker for events outside the allow-lists.
type ClassifiedEvent struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Activity    string `json:"activity"`
	Created     string `json:"created"`
	Result      string `json:"result"`
	Information string `json:"information"`
}
