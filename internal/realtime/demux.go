package realtime

import (
	"encoding/base64"
	"encoding/json"
	"log"
)

// Channel capacities for the demuxed streams. Chunk channels apply
// backpressure to the socket read loop when full.
const (
	eventBuffer = 16
	itemBuffer  = 16
	chunkBuffer = 64
)

// serverEvent is the decoded form of one wire event from the remote session.
type serverEvent struct {
	Type       string       `json:"type"`
	EventID    string       `json:"event_id,omitempty"`
	ItemID     string       `json:"item_id,omitempty"`
	Delta      string       `json:"delta,omitempty"`
	Transcript string       `json:"transcript,omitempty"`
	Part       *contentPart `json:"part,omitempty"`
	Error      *apiError    `json:"error,omitempty"`
}

type contentPart struct {
	Type string `json:"type"`
}

type apiError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// itemStreams holds the send sides of one content item's chunk channels.
type itemStreams struct {
	kind ContentKind
	text chan string
	audi chan []byte
}

// demux turns the flat wire event sequence into the structured Event stream:
// one ResponseEvent per response with an ordered item channel, per-item chunk
// channels, and one InputAudioEvent per detected utterance.
//
// All methods run on the single socket read goroutine, so no locking is
// needed on the routing state.
type demux struct {
	label  string
	events chan Event

	items       chan *ContentItem      // current response's item channel
	open        map[string]*itemStreams // item id -> live chunk channels
	transcripts map[string]chan string  // item id -> pending input transcription
}

func newDemux(label string) *demux {
	return &demux{
		label:       label,
		events:      make(chan Event, eventBuffer),
		open:        make(map[string]*itemStreams),
		transcripts: make(map[string]chan string),
	}
}

// handle routes one wire event. Unknown event types are ignored.
func (d *demux) handle(ev serverEvent) {
	switch ev.Type {
	case "response.created":
		d.beginResponse()

	case "response.content_part.added":
		d.beginItem(ev)

	case "response.text.delta":
		if s := d.open[ev.ItemID]; s != nil && s.text != nil {
			s.text <- ev.Delta
		}

	case "response.text.done":
		d.closeText(ev.ItemID)

	case "response.audio.delta":
		if s := d.open[ev.ItemID]; s != nil && s.audi != nil {
			chunk, err := base64.StdEncoding.DecodeString(ev.Delta)
			if err != nil {
				log.Printf("%s: bad audio delta for item %s: %v", d.label, ev.ItemID, err)
				return
			}
			s.audi <- chunk
		}

	case "response.audio.done":
		if s := d.open[ev.ItemID]; s != nil && s.audi != nil {
			close(s.audi)
			s.audi = nil
			d.reapItem(ev.ItemID)
		}

	case "response.audio_transcript.delta":
		// The transcript may already be done while the audio sub-stream is
		// still open; a late delta must not hit the closed (nil) channel.
		if s := d.open[ev.ItemID]; s != nil && s.text != nil {
			s.text <- ev.Delta
		}

	case "response.audio_transcript.done":
		d.closeText(ev.ItemID)

	case "response.done":
		d.endResponse()

	case "input_audio_buffer.speech_started":
		d.beginInputAudio(ev.ItemID)

	case "conversation.item.input_audio_transcription.completed":
		d.completeTranscription(ev.ItemID, ev.Transcript)

	case "conversation.item.input_audio_transcription.failed":
		d.completeTranscription(ev.ItemID, "")

	case "error":
		if ev.Error != nil {
			log.Printf("%s: remote error %s: %s", d.label, ev.Error.Code, ev.Error.Message)
		}
	}
}

func (d *demux) beginResponse() {
	if d.items != nil {
		// Previous response never saw response.done; end it first.
		d.endResponse()
	}
	d.items = make(chan *ContentItem, itemBuffer)
	d.events <- ResponseEvent{Items: d.items}
}

func (d *demux) beginItem(ev serverEvent) {
	if d.items == nil || ev.ItemID == "" {
		return
	}
	if _, dup := d.open[ev.ItemID]; dup {
		return
	}

	kind := ContentText
	if ev.Part != nil && ev.Part.Type == "audio" {
		kind = ContentAudio
	}

	s := &itemStreams{kind: kind, text: make(chan string, chunkBuffer)}
	item := &ContentItem{ID: ev.ItemID, Kind: kind, Text: s.text}
	if kind == ContentAudio {
		s.audi = make(chan []byte, chunkBuffer)
		item.Audio = s.audi
	}
	d.open[ev.ItemID] = s
	d.items <- item
}

func (d *demux) closeText(itemID string) {
	if s := d.open[itemID]; s != nil && s.text != nil {
		close(s.text)
		s.text = nil
		d.reapItem(itemID)
	}
}

// reapItem drops an item once both of its sub-streams have closed.
func (d *demux) reapItem(itemID string) {
	if s := d.open[itemID]; s != nil && s.text == nil && s.audi == nil {
		delete(d.open, itemID)
	}
}

func (d *demux) endResponse() {
	for id, s := range d.open {
		if s.text != nil {
			close(s.text)
		}
		if s.audi != nil {
			close(s.audi)
		}
		delete(d.open, id)
	}
	if d.items != nil {
		close(d.items)
		d.items = nil
	}
}

func (d *demux) beginInputAudio(itemID string) {
	ch := make(chan string, 1)
	if itemID != "" {
		d.transcripts[itemID] = ch
	}
	d.events <- InputAudioEvent{ItemID: itemID, Transcript: ch}
}

func (d *demux) completeTranscription(itemID, transcript string) {
	ch, ok := d.transcripts[itemID]
	if !ok {
		return
	}
	delete(d.transcripts, itemID)
	if transcript != "" {
		ch <- transcript
	}
	close(ch)
}

// shutdown closes every outstanding channel and the event stream itself.
func (d *demux) shutdown() {
	d.endResponse()
	for id, ch := range d.transcripts {
		close(ch)
		delete(d.transcripts, id)
	}
	close(d.events)
}

// decode parses one raw wire message.
func decode(raw []byte) (serverEvent, error) {
	var ev serverEvent
	err := json.Unmarshal(raw, &ev)
	return ev, err
}
