// Package history persists chat sessions and favorites per user on top of a
// durable key-value scope.
//
// All sessions of all users live in one JSON document under SessionsKey and
// all favorites in one document under FavoritesKey. Every mutation is a
// read-modify-write of the whole document. Writers in other processes are not
// coordinated: the last write wins.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/metrics"
	"github.com/ashureev/adolai/internal/store"
)

// Default storage keys and limits.
const (
	DefaultSessionsKey  = "adolai_chat_sessions"
	DefaultFavoritesKey = "adolai_favorite_chats"
	DefaultMaxSessions  = 50
)

// LoadStatus tells callers why a read produced what it did.
type LoadStatus int

const (
	// LoadOK means the document was present and parsed.
	LoadOK LoadStatus = iota
	// LoadEmpty means nothing was stored yet.
	LoadEmpty
	// LoadCorrupt means the stored document failed to parse and was treated as empty.
	LoadCorrupt
	// LoadFailed means the storage read itself failed and was treated as empty.
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadEmpty:
		return "empty"
	case LoadCorrupt:
		return "corrupt"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Store.
type Options struct {
	MaxSessions  int
	SessionsKey  string
	FavoritesKey string
	Now          func() time.Time
	Location     *time.Location // used by text exports
	Logger       *slog.Logger
}

// Store is the chat history manager. It is safe for concurrent use within
// one process.
type Store struct {
	kv           store.KV
	mu           sync.Mutex
	maxSessions  int
	sessionsKey  string
	favoritesKey string
	now          func() time.Time
	loc          *time.Location
	log          *slog.Logger
}

// SessionPatch carries the fields to upsert. Nil pointers and a nil Messages
// slice leave the stored value untouched on update.
type SessionPatch struct {
	SessionID string
	UserID    *string
	Topic     *string
	Summary   *string
	Messages  []domain.Message
}

// New creates a history Store over kv.
func New(kv store.KV, opts Options) *Store {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.SessionsKey == "" {
		opts.SessionsKey = DefaultSessionsKey
	}
	if opts.FavoritesKey == "" {
		opts.FavoritesKey = DefaultFavoritesKey
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		kv:           kv,
		maxSessions:  opts.MaxSessions,
		sessionsKey:  opts.SessionsKey,
		favoritesKey: opts.FavoritesKey,
		now:          opts.Now,
		loc:          opts.Location,
		log:          opts.Logger,
	}
}

type sessionsDoc map[string][]domain.ChatSession

type favoritesDoc map[string][]string

// loadDoc reads and parses the document under key into dst.
func (s *Store) loadDoc(ctx context.Context, key string, dst any) LoadStatus {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) || (err == nil && raw == "") {
		return LoadEmpty
	}
	if err != nil {
		s.log.Error("Error reading chat history", "key", key, "error", err)
		return LoadFailed
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Error("Chat history document is corrupt, treating as empty", "key", key, "error", err)
		metrics.HistoryCorruptions.WithLabelValues(documentLabel(key, s.sessionsKey)).Inc()
		return LoadCorrupt
	}
	return LoadOK
}

func documentLabel(key, sessionsKey string) string {
	if key == sessionsKey {
		return "sessions"
	}
	return "favorites"
}

func (s *Store) loadSessions(ctx context.Context) (sessionsDoc, LoadStatus) {
	doc := sessionsDoc{}
	status := s.loadDoc(ctx, s.sessionsKey, &doc)
	if status != LoadOK || doc == nil {
		doc = sessionsDoc{}
	}
	return doc, status
}

func (s *Store) loadFavorites(ctx context.Context) (favoritesDoc, LoadStatus) {
	doc := favoritesDoc{}
	status := s.loadDoc(ctx, s.favoritesKey, &doc)
	if status != LoadOK || doc == nil {
		doc = favoritesDoc{}
	}
	return doc, status
}

// writeDoc serializes and stores v. Failures are logged and swallowed.
func (s *Store) writeDoc(ctx context.Context, key string, v any, op string) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("Error encoding chat history", "op", op, "error", err)
		metrics.HistoryWriteFailures.Inc()
		return false
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.log.Error("Error writing chat history", "op", op, "error", err)
		metrics.HistoryWriteFailures.Inc()
		return false
	}
	return true
}

// LoadSessions returns the user's sessions together with how the read went,
// so callers can tell "nothing saved" from "recovered from corruption".
func (s *Store) LoadSessions(ctx context.Context, userID string) ([]domain.ChatSession, LoadStatus) {
	doc, status := s.loadSessions(ctx)
	sessions := doc[userID]
	if sessions == nil {
		sessions = []domain.ChatSession{}
	}
	return sessions, status
}

// UserIDs lists the users that have stored sessions, sorted.
func (s *Store) UserIDs(ctx context.Context) []string {
	doc, _ := s.loadSessions(ctx)
	ids := make([]string, 0, len(doc))
	for id, sessions := range doc {
		if len(sessions) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// AllSessions returns the user's sessions in stored order (most recently
// modified first). Unreadable state yields an empty slice.
func (s *Store) AllSessions(ctx context.Context, userID string) []domain.ChatSession {
	sessions, _ := s.LoadSessions(ctx, userID)
	return sessions
}

// SaveSession upserts by SessionID. Updates merge the provided fields over
// the stored session; inserts stamp CreatedAt. Both refresh LastModified.
// The user's collection is then ordered by LastModified descending and
// truncated to the configured maximum.
func (s *Store) SaveSession(ctx context.Context, userID string, patch SessionPatch) {
	if patch.SessionID == "" {
		s.log.Warn("Refusing to save chat session without id", "user_id", userID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, status := s.loadSessions(ctx)
	if status == LoadFailed {
		return
	}
	now := s.now().UnixMilli()
	sessions := doc[userID]

	idx := indexOf(sessions, patch.SessionID)
	if idx >= 0 {
		applyPatch(&sessions[idx], patch)
		sessions[idx].LastModified = now
	} else {
		session := domain.ChatSession{SessionID: patch.SessionID, UserID: userID}
		applyPatch(&session, patch)
		session.CreatedAt = now
		session.LastModified = now
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastModified > sessions[j].LastModified
	})
	if len(sessions) > s.maxSessions {
		sessions = sessions[:s.maxSessions]
	}
	doc[userID] = sessions

	s.writeDoc(ctx, s.sessionsKey, doc, "save session")
}

func applyPatch(session *domain.ChatSession, patch SessionPatch) {
	if patch.UserID != nil {
		session.UserID = *patch.UserID
	}
	if patch.Topic != nil {
		session.Topic = *patch.Topic
	}
	if patch.Summary != nil {
		session.Summary = *patch.Summary
	}
	if patch.Messages != nil {
		session.Messages = append([]domain.Message(nil), patch.Messages...)
	}
}

func indexOf(sessions []domain.ChatSession, sessionID string) int {
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			return i
		}
	}
	return -1
}

// UpdateSessionMessages replaces the messages of an existing session and
// recomputes its summary from the first user message. Absent sessions are
// left alone.
func (s *Store) UpdateSessionMessages(ctx context.Context, userID, sessionID string, messages []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, status := s.loadSessions(ctx)
	if status != LoadOK {
		return
	}
	sessions := doc[userID]
	idx := indexOf(sessions, sessionID)
	if idx < 0 {
		return
	}

	session := &sessions[idx]
	session.Messages = append([]domain.Message(nil), messages...)
	session.LastModified = s.now().UnixMilli()
	if first, ok := session.FirstUserMessage(); ok {
		session.Summary = domain.Summarize(first.Text)
	}

	s.writeDoc(ctx, s.sessionsKey, doc, "update session messages")
}

// Session returns one session by id.
func (s *Store) Session(ctx context.Context, userID, sessionID string) (*domain.ChatSession, bool) {
	sessions := s.AllSessions(ctx, userID)
	if idx := indexOf(sessions, sessionID); idx >= 0 {
		return &sessions[idx], true
	}
	return nil, false
}

// DeleteSession removes a session. Deleting an absent session is a no-op.
// Favorites are left untouched.
func (s *Store) DeleteSession(ctx context.Context, userID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, status := s.loadSessions(ctx)
	if status != LoadOK {
		return
	}
	sessions, ok := doc[userID]
	if !ok {
		return
	}
	kept := sessions[:0]
	for _, session := range sessions {
		if session.SessionID != sessionID {
			kept = append(kept, session)
		}
	}
	doc[userID] = kept

	s.writeDoc(ctx, s.sessionsKey, doc, "delete session")
}

// SearchSessions returns sessions whose summary, topic or any message text
// contains query, ignoring case, most recently modified first.
func (s *Store) SearchSessions(ctx context.Context, userID, query string) []domain.ChatSession {
	q := strings.ToLower(query)
	matches := []domain.ChatSession{}
	for _, session := range s.AllSessions(ctx, userID) {
		if sessionMatches(&session, q) {
			matches = append(matches, session)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LastModified > matches[j].LastModified
	})
	return matches
}

func sessionMatches(session *domain.ChatSession, q string) bool {
	if session.Summary != "" && strings.Contains(strings.ToLower(session.Summary), q) {
		return true
	}
	if session.Topic != "" && strings.Contains(strings.ToLower(session.Topic), q) {
		return true
	}
	for _, m := range session.Messages {
		if strings.Contains(strings.ToLower(m.Text), q) {
			return true
		}
	}
	return false
}

// FilterSessionsByDate returns sessions whose date (CreatedAt, else
// LastModified) lies in [startMs, endMs].
func (s *Store) FilterSessionsByDate(ctx context.Context, userID string, startMs, endMs int64) []domain.ChatSession {
	matches := []domain.ChatSession{}
	for _, session := range s.AllSessions(ctx, userID) {
		d := session.Date()
		if d >= startMs && d <= endMs {
			matches = append(matches, session)
		}
	}
	return matches
}

// favoriteIDs returns the raw favorite set, stale ids included.
func (s *Store) favoriteIDs(ctx context.Context, userID string) []string {
	doc, _ := s.loadFavorites(ctx)
	return doc[userID]
}

// FavoriteIDs returns the user's raw favorite ids, including ids of sessions
// that no longer exist.
func (s *Store) FavoriteIDs(ctx context.Context, userID string) []string {
	ids := s.favoriteIDs(ctx, userID)
	if ids == nil {
		return []string{}
	}
	return append([]string(nil), ids...)
}

// FavoriteSessions returns live sessions whose id is in the favorite set.
// Stale favorite ids are skipped but not removed.
func (s *Store) FavoriteSessions(ctx context.Context, userID string) []domain.ChatSession {
	favs := make(map[string]struct{})
	for _, id := range s.favoriteIDs(ctx, userID) {
		favs[id] = struct{}{}
	}
	matches := []domain.ChatSession{}
	if len(favs) == 0 {
		return matches
	}
	for _, session := range s.AllSessions(ctx, userID) {
		if _, ok := favs[session.SessionID]; ok {
			matches = append(matches, session)
		}
	}
	return matches
}

// ToggleFavorite flips membership of sessionID and returns the new state.
// A failed write reports false.
func (s *Store) ToggleFavorite(ctx context.Context, userID, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, status := s.loadFavorites(ctx)
	if status == LoadFailed {
		return false
	}
	ids := doc[userID]
	member := false
	if i := indexOfString(ids, sessionID); i >= 0 {
		ids = append(ids[:i], ids[i+1:]...)
	} else {
		ids = append(ids, sessionID)
		member = true
	}
	if ids == nil {
		ids = []string{}
	}
	doc[userID] = ids

	if !s.writeDoc(ctx, s.favoritesKey, doc, "toggle favorite") {
		return false
	}
	return member
}

func indexOfString(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// IsFavorite reports raw membership in the favorite set.
func (s *Store) IsFavorite(ctx context.Context, userID, sessionID string) bool {
	return indexOfString(s.favoriteIDs(ctx, userID), sessionID) >= 0
}

// ClearHistory deletes all sessions and favorites of the user.
func (s *Store) ClearHistory(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, status := s.loadSessions(ctx)
	if status != LoadFailed {
		delete(sessions, userID)
		s.writeDoc(ctx, s.sessionsKey, sessions, "clear sessions")
	}

	favorites, status := s.loadFavorites(ctx)
	if status != LoadFailed {
		delete(favorites, userID)
		s.writeDoc(ctx, s.favoritesKey, favorites, "clear favorites")
	}
}

// StorageStats aggregates counts and the date range of the user's sessions.
func (s *Store) StorageStats(ctx context.Context, userID string) domain.StorageStats {
	sessions := s.AllSessions(ctx, userID)
	stats := domain.StorageStats{
		TotalSessions:    len(sessions),
		FavoriteSessions: len(s.FavoriteSessions(ctx, userID)),
	}

	var oldest, newest int64
	for i := range sessions {
		stats.TotalMessages += len(sessions[i].Messages)
		d := sessions[i].Date()
		if oldest == 0 || d < oldest {
			oldest = d
		}
		if newest == 0 || d > newest {
			newest = d
		}
	}
	if oldest != 0 {
		t := time.UnixMilli(oldest).In(s.loc)
		stats.OldestSession = &t
	}
	if newest != 0 {
		t := time.UnixMilli(newest).In(s.loc)
		stats.NewestSession = &t
	}
	return stats
}
