package quiz

import "sync"

type broadcastEvent struct {
	GameID  string
	UserID  string
	MsgID   uint16
	Payload interface{}
}

// fakeBroadcaster records every fan-out for assertion.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (f *fakeBroadcaster) ToGame(gameID string, msgID uint16, v interface{}) {
	f.record(broadcastEvent{GameID: gameID, MsgID: msgID, Payload: v})
}

func (f *fakeBroadcaster) ToUser(userID string, msgID uint16, v interface{}) {
	f.record(broadcastEvent{UserID: userID, MsgID: msgID, Payload: v})
}

func (f *fakeBroadcaster) ToLobby(msgID uint16, v interface{}) {
	f.record(broadcastEvent{MsgID: msgID, Payload: v})
}

func (f *fakeBroadcaster) record(e broadcastEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeBroadcaster) all() []broadcastEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broadcastEvent(nil), f.events...)
}

// byMsgID returns the recorded events carrying the given message id.
func (f *fakeBroadcaster) byMsgID(msgID uint16) []broadcastEvent {
	var matched []broadcastEvent
	for _, e := range f.all() {
		if e.MsgID == msgID {
			matched = append(matched, e)
		}
	}
	return matched
}

func (f *fakeBroadcaster) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// fakeArchiver records saved snapshots and records; saveErr makes every
// snapshot write fail.
type fakeArchiver struct {
	mu        sync.Mutex
	snapshots []Snapshot
	records   []GameRecord
	saveErr   error
}

func (f *fakeArchiver) SaveGame(s Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeArchiver) SaveGameRecord(r GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, r)
	return nil
}

func (f *fakeArchiver) DeleteGame(id string) error {
	return nil
}

func (f *fakeArchiver) savedRecords() []GameRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GameRecord(nil), f.records...)
}
