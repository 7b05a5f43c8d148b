package chat

// Separator joins the two participant IDs inside a chat ID. It cannot occur
// inside a user ID (IDs are UUIDs).
const Separator = ":"

// DeriveChatID builds the canonical ID for the chat between two users by
// sorting the IDs lexicographically. The same unordered pair always yields
// the same chat ID: DeriveChatID(a, b) == DeriveChatID(b, a).
//
// Derivation is total; rejecting a == b is the caller's job.
func DeriveChatID(userA, userB string) string {
	if userA < userB {
		return userA + Separator + userB
	}
	return userB + Separator + userA
}
