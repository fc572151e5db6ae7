package service

import "sync"

// IdentitySession es el snapshot pre-caos de un miembro: su nickname literal
// (nil = no tenía) y su display name (siempre no vacío, para las reglas custom).
type IdentitySession struct {
	Nick        *string
	DisplayName string
}

type sessionKey struct {
	GuildID string
	UserID  string
}

// SessionStore guarda los snapshots en memoria, clave (guild, user).
// Snapshot-si-ausente y pop son atómicos: joins/leaves concurrentes del
// mismo miembro no pueden pisar el original ni restaurar dos veces.
// Se pierde al reiniciar el proceso; limitación asumida.
type SessionStore struct {
	mu sync.Mutex
	m  map[sessionKey]IdentitySession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{m: map[sessionKey]IdentitySession{}}
}

// Snapshot guarda sólo si no había nada para ese miembro (el primer join es
// el que vale). Devuelve true si guardó.
func (s *SessionStore) Snapshot(guildID, userID string, sess IdentitySession) bool {
	k := sessionKey{guildID, userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = sess
	return true
}

func (s *SessionStore) Peek(guildID, userID string) (IdentitySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[sessionKey{guildID, userID}]
	return sess, ok
}

// Pop lee y borra en una sola operación. La sesión se consume aunque el
// edit posterior falle: no re-insertamos para no reintentar infinito a un
// miembro que nunca vamos a poder editar.
func (s *SessionStore) Pop(guildID, userID string) (IdentitySession, bool) {
	k := sessionKey{guildID, userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[k]
	if ok {
		delete(s.m, k)
	}
	return sess, ok
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
