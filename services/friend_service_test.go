package services

import (
	"errors"
	"testing"

	"retro-arcade-system/models"
)

func TestSendRequest(t *testing.T) {
	t.Run("creates a pending edge", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewFriendService(db)
		alice := createTestUser(t, db, "alice", 0)
		bob := createTestUser(t, db, "bob", 0)

		edge, err := svc.SendRequest(alice.ExternalUserID, bob.Username)
		if err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}
		if edge.Status != models.FriendshipStatusPending {
			t.Errorf("status = %s, want pending", edge.Status)
		}
		if edge.RequesterID != alice.ID || edge.AddresseeID != bob.ID {
			t.Errorf("edge endpoints wrong: %+v", edge)
		}
	})

	t.Run("unknown addressee", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewFriendService(db)
		alice := createTestUser(t, db, "alice", 0)

		if _, err := svc.SendRequest(alice.ExternalUserID, "nobody"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("cannot befriend yourself", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewFriendService(db)
		alice := createTestUser(t, db, "alice", 0)

		if _, err := svc.SendRequest(alice.ExternalUserID, alice.Username); err == nil {
			t.Error("expected error for self-friend request")
		}
	})

	t.Run("duplicates rejected in both directions", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewFriendService(db)
		alice := createTestUser(t, db, "alice", 0)
		bob := createTestUser(t, db, "bob", 0)

		if _, err := svc.SendRequest(alice.ExternalUserID, bob.Username); err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}
		if _, err := svc.SendRequest(alice.ExternalUserID, bob.Username); !errors.Is(err, ErrDuplicateRequest) {
			t.Errorf("same direction: error = %v, want ErrDuplicateRequest", err)
		}
		if _, err := svc.SendRequest(bob.ExternalUserID, alice.Username); !errors.Is(err, ErrDuplicateRequest) {
			t.Errorf("reverse direction: error = %v, want ErrDuplicateRequest", err)
		}
	})
}

func TestAcceptRequest(t *testing.T) {
	t.Run("awards the bonus to both sides", func(t *testing.T) {
		db := newTestDB(t)
		friends := NewFriendService(db)
		guilds := NewGuildService(db)

		alice := createTestUser(t, db, "alice", 0)
		bob := createTestUser(t, db, "bob", 0)

		// Alice is in a guild, so her bonus must also roll up
		guild, err := guilds.CreateGuild(alice.ExternalUserID, "Alice's Army", "")
		if err != nil {
			t.Fatalf("CreateGuild failed: %v", err)
		}

		edge, err := friends.SendRequest(alice.ExternalUserID, bob.Username)
		if err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}

		accepted, err := friends.AcceptRequest(bob.ExternalUserID, edge.ID)
		if err != nil {
			t.Fatalf("AcceptRequest failed: %v", err)
		}
		if accepted.Status != models.FriendshipStatusAccepted || accepted.AcceptedAt == nil {
			t.Errorf("edge not marked accepted: %+v", accepted)
		}

		var reloadedAlice, reloadedBob models.User
		if err := db.First(&reloadedAlice, "id = ?", alice.ID).Error; err != nil {
			t.Fatalf("failed to reload alice: %v", err)
		}
		if err := db.First(&reloadedBob, "id = ?", bob.ID).Error; err != nil {
			t.Fatalf("failed to reload bob: %v", err)
		}
		// alice: 100 creation bonus + 25 friend bonus
		if reloadedAlice.TotalExp != 125 {
			t.Errorf("alice total exp = %d, want 125", reloadedAlice.TotalExp)
		}
		if reloadedBob.TotalExp != 25 {
			t.Errorf("bob total exp = %d, want 25", reloadedBob.TotalExp)
		}

		var reloadedGuild models.Guild
		if err := db.First(&reloadedGuild, "id = ?", guild.ID).Error; err != nil {
			t.Fatalf("failed to reload guild: %v", err)
		}
		if reloadedGuild.TotalExp != 125 {
			t.Errorf("guild aggregate = %d, want 125", reloadedGuild.TotalExp)
		}
	})

	t.Run("unknown or already-accepted request", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewFriendService(db)
		alice := createTestUser(t, db, "alice", 0)
		bob := createTestUser(t, db, "bob", 0)

		if _, err := svc.AcceptRequest(bob.ExternalUserID, "no-such-request"); !errors.Is(err, ErrRequestNotFound) {
			t.Errorf("error = %v, want ErrRequestNotFound", err)
		}

		edge, err := svc.SendRequest(alice.ExternalUserID, bob.Username)
		if err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}
		if _, err := svc.AcceptRequest(bob.ExternalUserID, edge.ID); err != nil {
			t.Fatalf("AcceptRequest failed: %v", err)
		}
		// Accepting twice must not double-pay the bonus
		if _, err := svc.AcceptRequest(bob.ExternalUserID, edge.ID); !errors.Is(err, ErrRequestNotFound) {
			t.Errorf("second accept: error = %v, want ErrRequestNotFound", err)
		}
	})

	t.Run("only the addressee can accept", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewFriendService(db)
		alice := createTestUser(t, db, "alice", 0)
		bob := createTestUser(t, db, "bob", 0)

		edge, err := svc.SendRequest(alice.ExternalUserID, bob.Username)
		if err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}
		if _, err := svc.AcceptRequest(alice.ExternalUserID, edge.ID); !errors.Is(err, ErrRequestNotFound) {
			t.Errorf("requester accept: error = %v, want ErrRequestNotFound", err)
		}
	})
}

func TestFriendLists(t *testing.T) {
	db := newTestDB(t)
	svc := NewFriendService(db)
	alice := createTestUser(t, db, "alice", 0)
	bob := createTestUser(t, db, "bob", 0)
	carol := createTestUser(t, db, "carol", 0)

	edge, err := svc.SendRequest(alice.ExternalUserID, bob.Username)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if _, err := svc.AcceptRequest(bob.ExternalUserID, edge.ID); err != nil {
		t.Fatalf("AcceptRequest failed: %v", err)
	}
	if _, err := svc.SendRequest(carol.ExternalUserID, alice.Username); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	t.Run("accepted friends visible from both sides", func(t *testing.T) {
		aliceFriends, err := svc.ListFriends(alice.ExternalUserID)
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(aliceFriends) != 1 || aliceFriends[0].Username != "bob" {
			t.Errorf("alice's friends = %+v, want just bob", aliceFriends)
		}

		bobFriends, err := svc.ListFriends(bob.ExternalUserID)
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(bobFriends) != 1 || bobFriends[0].Username != "alice" {
			t.Errorf("bob's friends = %+v, want just alice", bobFriends)
		}
	})

	t.Run("pending requests exclude accepted ones", func(t *testing.T) {
		pending, err := svc.PendingRequests(alice.ExternalUserID)
		if err != nil {
			t.Fatalf("PendingRequests failed: %v", err)
		}
		if len(pending) != 1 || pending[0].RequesterID != carol.ID {
			t.Errorf("pending = %+v, want just carol's request", pending)
		}
	})

	t.Run("removal works from either side", func(t *testing.T) {
		if err := svc.RemoveFriend(bob.ExternalUserID, alice.Username); err != nil {
			t.Fatalf("RemoveFriend failed: %v", err)
		}
		aliceFriends, err := svc.ListFriends(alice.ExternalUserID)
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(aliceFriends) != 0 {
			t.Errorf("alice's friends = %+v, want empty", aliceFriends)
		}
	})
}
