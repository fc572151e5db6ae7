package service

import (
	"sync"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestSnapshotFirstJoinWins(t *testing.T) {
	st := NewSessionStore()

	if !st.Snapshot("g1", "u1", IdentitySession{Nick: strPtr("Original"), DisplayName: "Original"}) {
		t.Fatal("el primer snapshot tendría que guardarse")
	}
	// un segundo join (p. ej. el rename nuestro disparando otro evento) no pisa
	if st.Snapshot("g1", "u1", IdentitySession{Nick: strPtr("Caos"), DisplayName: "Caos"}) {
		t.Fatal("el segundo snapshot no tendría que guardarse")
	}

	sess, ok := st.Peek("g1", "u1")
	if !ok || sess.Nick == nil || *sess.Nick != "Original" {
		t.Fatalf("Peek = %+v, %v; quiero el snapshot original", sess, ok)
	}
}

func TestPopConsumesExactlyOnce(t *testing.T) {
	st := NewSessionStore()
	st.Snapshot("g1", "u1", IdentitySession{DisplayName: "Bob"})

	if _, ok := st.Pop("g1", "u1"); !ok {
		t.Fatal("el primer Pop tendría que encontrar la sesión")
	}
	if _, ok := st.Pop("g1", "u1"); ok {
		t.Fatal("el segundo Pop no tendría que encontrar nada")
	}
	if st.Len() != 0 {
		t.Fatalf("Len = %d, quiero 0", st.Len())
	}
}

func TestKeysAreScopedByGuild(t *testing.T) {
	st := NewSessionStore()
	st.Snapshot("g1", "u1", IdentitySession{DisplayName: "en g1"})
	st.Snapshot("g2", "u1", IdentitySession{DisplayName: "en g2"})

	if st.Len() != 2 {
		t.Fatalf("Len = %d, quiero 2", st.Len())
	}
	sess, _ := st.Pop("g2", "u1")
	if sess.DisplayName != "en g2" {
		t.Fatalf("Pop de g2 devolvió %q", sess.DisplayName)
	}
	if _, ok := st.Peek("g1", "u1"); !ok {
		t.Fatal("la sesión de g1 tendría que seguir viva")
	}
}

func TestSnapshotPopConcurrent(t *testing.T) {
	st := NewSessionStore()

	var wg sync.WaitGroup
	stored := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored <- st.Snapshot("g1", "u1", IdentitySession{DisplayName: "X"})
		}()
	}
	wg.Wait()
	close(stored)

	wins := 0
	for ok := range stored {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("%d snapshots ganaron, quiero exactamente 1", wins)
	}

	popped := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := st.Pop("g1", "u1")
			popped <- ok
		}()
	}
	wg.Wait()
	close(popped)

	pops := 0
	for ok := range popped {
		if ok {
			pops++
		}
	}
	if pops != 1 {
		t.Fatalf("%d Pops encontraron sesión, quiero exactamente 1", pops)
	}
}
