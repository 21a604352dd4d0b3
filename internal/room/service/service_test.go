package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"testing"
	"time"

	"quiz-arena/backend/internal/platform/validation"
	"quiz-arena/backend/internal/room/domain"
	"quiz-arena/backend/internal/room/repository"
	"quiz-arena/backend/internal/telemetry"
)

// memRepo is an in-memory repository. WithinTx serializes transactions and restores the previous
// state when fn fails.
type memRepo struct {
	mu           sync.Mutex
	rooms        map[string]domain.Room
	participants map[string]domain.Participant // key: roomID/userID
	codes        map[string]domain.Code        // key: code id
}

func newMemRepo() *memRepo {
	return &memRepo{
		rooms:        map[string]domain.Room{},
		participants: map[string]domain.Participant{},
		codes:        map[string]domain.Code{},
	}
}

func (r *memRepo) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms, parts, codes := maps.Clone(r.rooms), maps.Clone(r.participants), maps.Clone(r.codes)
	if err := fn(memTx{r}); err != nil {
		r.rooms, r.participants, r.codes = rooms, parts, codes
		return err
	}
	return nil
}

func (r *memRepo) DeleteExpiredCodes(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.codes {
		if c.Expired(now) {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) participantCount(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.participants {
		if p.RoomID == roomID {
			n++
		}
	}
	return n
}

func (r *memRepo) codeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

type memTx struct{ r *memRepo }

func (t memTx) InsertRoom(_ context.Context, room *domain.Room) error {
	t.r.rooms[room.ID] = *room
	return nil
}

func (t memTx) LockRoom(_ context.Context, id string) (*domain.Room, error) {
	room, ok := t.r.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (t memTx) AddParticipant(_ context.Context, p *domain.Participant) (bool, error) {
	key := p.RoomID + "/" + p.UserID
	if _, ok := t.r.participants[key]; ok {
		return false, nil
	}
	t.r.participants[key] = *p
	return true, nil
}

func (t memTx) IsParticipant(_ context.Context, roomID, userID string) (bool, error) {
	_, ok := t.r.participants[roomID+"/"+userID]
	return ok, nil
}

func (t memTx) CountParticipants(_ context.Context, roomID string) (int, error) {
	n := 0
	for _, p := range t.r.participants {
		if p.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

func (t memTx) CodeForRoom(_ context.Context, roomID string) (*domain.Code, error) {
	for _, c := range t.r.codes {
		if c.RoomID == roomID {
			return &c, nil
		}
	}
	return nil, nil
}

func (t memTx) FindCode(_ context.Context, code string) (*domain.Code, error) {
	for _, c := range t.r.codes {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, nil
}

func (t memTx) InsertCode(_ context.Context, c *domain.Code) (bool, error) {
	for _, existing := range t.r.codes {
		if existing.Code == c.Code {
			return false, nil
		}
		if existing.RoomID == c.RoomID {
			return false, errors.New("room_codes_room_id_key violated")
		}
	}
	t.r.codes[c.ID] = *c
	return true, nil
}

func (t memTx) DeleteCode(_ context.Context, id string) error {
	delete(t.r.codes, id)
	return nil
}

type memRecorder struct {
	mu     sync.Mutex
	events []*telemetry.Event
}

func (r *memRecorder) Record(_ context.Context, e *telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *memRecorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	now  time.Time
	repo *memRepo
	rec  *memRecorder
	svc  *Service
	seq  int
}

func newFixture() *fixture {
	f := &fixture{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), repo: newMemRepo(), rec: &memRecorder{}}
	f.svc = NewService(f.repo, 10*time.Minute, f.rec)
	f.svc.now = func() time.Time { return f.now }
	f.svc.newCode = func() (string, error) {
		f.seq++
		return fmt.Sprintf("CODE%02d", f.seq), nil
	}
	return f
}

func intPtr(n int) *int                    { return &n }
func strPtr(s string) *string              { return &s }
func boolPtr(b bool) *bool                 { return &b }
func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) createPrivate(t *testing.T, owner string, limit *int) *CreateResult {
	t.Helper()
	res, err := f.svc.Create(context.Background(), owner, CreateInput{Name: "Trivia Night", IsPrivate: boolPtr(true), RoomLimit: limit})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return res
}

func wantValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error %q", err, msg)
	}
	if verr.Message != msg {
		t.Errorf("message = %q, want %q", verr.Message, msg)
	}
}

func TestCreate_PublicRoom(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), "u-1", CreateInput{Name: "Open Quiz", IsPrivate: boolPtr(false)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.RoomCode != "" || res.ExpiresAt != nil {
		t.Errorf("public room got a code: %+v", res)
	}
	if n := f.repo.participantCount(res.RoomID); n != 1 {
		t.Errorf("participants = %d, want creator only", n)
	}
	if f.rec.count(telemetry.TypeRoomCreated) != 1 {
		t.Error("room.created not recorded")
	}
}

func TestCreate_PrivateRoomIssuesCode(t *testing.T) {
	f := newFixture()
	res := f.createPrivate(t, "u-1", intPtr(2))
	if res.RoomCode != "CODE01" {
		t.Errorf("RoomCode = %q, want CODE01", res.RoomCode)
	}
	if res.ExpiresAt == nil || !res.ExpiresAt.Equal(f.now.Add(10*time.Minute)) {
		t.Errorf("ExpiresAt = %v, want now+10m", res.ExpiresAt)
	}
	if n := f.repo.participantCount(res.RoomID); n != 1 {
		t.Errorf("participants = %d, want 1", n)
	}
}

func TestCreate_CallerSuppliedCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.svc.Create(ctx, "u-1", CreateInput{Name: "Mine", IsPrivate: boolPtr(true), RoomCode: strPtr("MYCODE7")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.RoomCode != "MYCODE7" {
		t.Errorf("RoomCode = %q, want MYCODE7", res.RoomCode)
	}

	_, err = f.svc.Create(ctx, "u-2", CreateInput{Name: "Theirs", IsPrivate: boolPtr(true), RoomCode: strPtr("MYCODE7")})
	if !errors.Is(err, ErrCodeInUse) {
		t.Fatalf("duplicate code = %v, want ErrCodeInUse", err)
	}
	if len(f.repo.rooms) != 1 {
		t.Errorf("rooms = %d, want the failed create rolled back", len(f.repo.rooms))
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateInput
		msg  string
	}{
		{"short name", CreateInput{Name: "ab"}, "Room name must be at least 3 characters long"},
		{"blank name", CreateInput{Name: "  a  "}, "Room name must be at least 3 characters long"},
		{"limit too low", CreateInput{Name: "Quiz", IsPrivate: boolPtr(false), RoomLimit: intPtr(1)}, "Room limit must be between 2 and 10"},
		{"limit too high", CreateInput{Name: "Quiz", IsPrivate: boolPtr(false), RoomLimit: intPtr(11)}, "Room limit must be between 2 and 10"},
		{"short code", CreateInput{Name: "Quiz", IsPrivate: boolPtr(true), RoomCode: strPtr("abc")}, "Room code must be at least 6 characters long"},
		{"missing isPrivate", CreateInput{Name: "Quiz"}, "isPrivate must be a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(context.Background(), "u-1", tt.in)
			wantValidation(t, err, tt.msg)
			if len(f.repo.rooms) != 0 {
				t.Error("invalid input must not create a room")
			}
		})
	}
}

func TestCreate_EmptyCodeMeansGenerate(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), "u-1", CreateInput{Name: "Quiz", IsPrivate: boolPtr(true), RoomCode: strPtr("")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.RoomCode != "CODE01" {
		t.Errorf("RoomCode = %q, want generated code", res.RoomCode)
	}
}

func TestGenerateCode_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", nil)

	if _, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: "00000000-0000-0000-0000-000000000000"}); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("missing room = %v, want ErrRoomNotFound", err)
	}
	if _, err := f.svc.GenerateCode(ctx, "intruder", GenerateCodeInput{RoomID: created.RoomID}); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator = %v, want ErrNotCreator", err)
	}
	_, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: created.RoomID, RoomLimit: intPtr(11)})
	wantValidation(t, err, "Room limit must be between 2 and 10")
	if _, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: "not-a-uuid"}); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("non-uuid room id = %v, want ErrRoomNotFound", err)
	}
	_, err = f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{})
	wantValidation(t, err, "Invalid room ID")
}

func TestGenerateCode_ValidCodeIsNotRotated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", nil)
	f.advance(3 * time.Minute)

	got, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: created.RoomID})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if got.RoomCode != created.RoomCode || !got.ExpiresAt.Equal(*created.ExpiresAt) {
		t.Errorf("GenerateCode = %+v, want the unchanged code %s", got, created.RoomCode)
	}
	if f.rec.count(telemetry.TypeRoomCodeIssued) != 0 {
		t.Error("returning an existing code is not an issuance")
	}
}

func TestGenerateCode_ExpiredCodeIsReplaced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", nil)
	f.advance(11 * time.Minute)

	got, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: created.RoomID})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if got.RoomCode == created.RoomCode {
		t.Error("expired code must be replaced by a new one")
	}
	if !got.ExpiresAt.Equal(f.now.Add(10 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want fresh 10m window", got.ExpiresAt)
	}
	if f.repo.codeCount() != 1 {
		t.Errorf("codes = %d, want exactly one per room", f.repo.codeCount())
	}
}

func TestGenerateCode_PublicRoomGetsFirstCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, _ := f.svc.Create(ctx, "owner", CreateInput{Name: "Open Quiz", IsPrivate: boolPtr(false)})

	got, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: res.RoomID, RoomLimit: intPtr(4)})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if got.RoomCode == "" {
		t.Error("a code should be issued")
	}
	if l := f.repo.rooms[res.RoomID].Limit; l != nil {
		t.Errorf("room limit = %d, want unchanged (nil)", *l)
	}
	if f.rec.count(telemetry.TypeRoomCodeIssued) != 1 {
		t.Error("room.code_issued not recorded")
	}
}

func TestGenerateCode_LimitDoesNotShrinkRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", nil)
	for _, u := range []string{"u-1", "u-2"} {
		if _, err := f.svc.Join(ctx, u, JoinInput{RoomCode: created.RoomCode}); err != nil {
			t.Fatalf("Join(%s): %v", u, err)
		}
	}

	if _, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: created.RoomID, RoomLimit: intPtr(2)}); err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if l := f.repo.rooms[created.RoomID].Limit; l != nil {
		t.Errorf("room limit = %d, want unchanged (nil)", *l)
	}
	if n := f.repo.participantCount(created.RoomID); n != 3 {
		t.Errorf("participants = %d, want 3", n)
	}
	if _, err := f.svc.Join(ctx, "u-3", JoinInput{RoomCode: created.RoomCode}); err != nil {
		t.Errorf("Join after GenerateCode with a limit = %v, want admitted", err)
	}
}

func TestIssueCode_RegeneratesOnCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.createPrivate(t, "owner", nil)

	values := []string{first.RoomCode, first.RoomCode, "FRESH1"}
	f.svc.newCode = func() (string, error) {
		v := values[0]
		values = values[1:]
		return v, nil
	}
	res, err := f.svc.Create(ctx, "other", CreateInput{Name: "Second", IsPrivate: boolPtr(true)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.RoomCode != "FRESH1" {
		t.Errorf("RoomCode = %q, want FRESH1 after two collisions", res.RoomCode)
	}
}

func TestIssueCode_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.createPrivate(t, "owner", nil)

	attempts := 0
	f.svc.newCode = func() (string, error) {
		attempts++
		return first.RoomCode, nil
	}
	_, err := f.svc.Create(ctx, "other", CreateInput{Name: "Second", IsPrivate: boolPtr(true)})
	if !errors.Is(err, errCodeCollision) {
		t.Fatalf("Create = %v, want errCodeCollision", err)
	}
	if attempts != maxCodeAttempts {
		t.Errorf("attempts = %d, want %d", attempts, maxCodeAttempts)
	}
}

func TestJoin_Success(t *testing.T) {
	f := newFixture()
	created := f.createPrivate(t, "owner", nil)

	res, err := f.svc.Join(context.Background(), "guest", JoinInput{RoomCode: created.RoomCode})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.RoomID != created.RoomID || res.RoomName != "Trivia Night" {
		t.Errorf("Join = %+v", res)
	}
	if n := f.repo.participantCount(created.RoomID); n != 2 {
		t.Errorf("participants = %d, want 2", n)
	}
	if f.rec.count(telemetry.TypeRoomJoined) != 1 {
		t.Error("room.joined not recorded")
	}
}

func TestJoin_InvalidCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: "NOPE99"}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("Join = %v, want ErrInvalidCode", err)
	}
	_, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: "abc"})
	wantValidation(t, err, "Room code must be at least 6 characters long")
	if f.rec.count(telemetry.TypeRoomJoinDenied) != 1 {
		t.Error("room.join_rejected should be recorded once")
	}
}

func TestJoin_TwiceIsRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", nil)

	if _, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: created.RoomCode}); err != nil {
		t.Fatalf("first Join: %v", err)
	}
	if _, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: created.RoomCode}); !errors.Is(err, ErrAlreadyParticipant) {
		t.Errorf("second Join = %v, want ErrAlreadyParticipant", err)
	}
	if _, err := f.svc.Join(ctx, "owner", JoinInput{RoomCode: created.RoomCode}); !errors.Is(err, ErrAlreadyParticipant) {
		t.Errorf("creator Join = %v, want ErrAlreadyParticipant", err)
	}
	if n := f.repo.participantCount(created.RoomID); n != 2 {
		t.Errorf("participants = %d, want 2", n)
	}
}

func TestJoin_CapacityScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", intPtr(2))
	if n := f.repo.participantCount(created.RoomID); n != 1 {
		t.Fatalf("participants after create = %d, want 1", n)
	}

	if _, err := f.svc.Join(ctx, "second", JoinInput{RoomCode: created.RoomCode}); err != nil {
		t.Fatalf("second user Join: %v", err)
	}
	if n := f.repo.participantCount(created.RoomID); n != 2 {
		t.Fatalf("participants = %d, want 2", n)
	}
	if _, err := f.svc.Join(ctx, "third", JoinInput{RoomCode: created.RoomCode}); !errors.Is(err, ErrRoomFull) {
		t.Errorf("third user Join = %v, want ErrRoomFull", err)
	}
	if n := f.repo.participantCount(created.RoomID); n != 2 {
		t.Errorf("participants = %d, want 2", n)
	}
}

func TestJoin_ConcurrentJoinsRespectLimit(t *testing.T) {
	f := newFixture()
	created := f.createPrivate(t, "owner", intPtr(5))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Join(context.Background(), fmt.Sprintf("user-%d", i), JoinInput{RoomCode: created.RoomCode})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	admitted, full := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, ErrRoomFull):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if admitted != 4 || full != 16 {
		t.Errorf("admitted=%d full=%d, want 4 and 16", admitted, full)
	}
	if n := f.repo.participantCount(created.RoomID); n != 5 {
		t.Errorf("participants = %d, want the limit 5", n)
	}
}

func TestJoin_ExpiredCodeScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.createPrivate(t, "owner", nil)

	f.advance(10*time.Minute + time.Second)
	if _, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: created.RoomCode}); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Join = %v, want ErrCodeExpired", err)
	}
	if f.repo.codeCount() != 0 {
		t.Error("expired code must be deleted")
	}
	if _, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: created.RoomCode}); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("retry Join = %v, want ErrInvalidCode", err)
	}

	fresh, err := f.svc.GenerateCode(ctx, "owner", GenerateCodeInput{RoomID: created.RoomID})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if fresh.RoomCode == created.RoomCode {
		t.Error("regenerated code should differ from the expired one")
	}
	if _, err := f.svc.Join(ctx, "guest", JoinInput{RoomCode: fresh.RoomCode}); err != nil {
		t.Errorf("Join with fresh code: %v", err)
	}
}
