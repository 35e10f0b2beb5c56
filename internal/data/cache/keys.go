package cache

const (
	// Slot lock: lock:slot:{restaurant_id}:{date}:{time} -> owner token
	KeySlotLock = "lock:slot:%s"

	// Reservation in progress: draft:{user_id} -> JSON draft
	KeyDraft = "draft:%s"
)
