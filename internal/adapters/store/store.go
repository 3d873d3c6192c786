package store

import (
	"github.com/mikey/contact-relay/internal/core"
)

// Compile-time checks that every store satisfies the core port
var (
	_ core.MessageStore = (*MemoryStore)(nil)
	_ core.MessageStore = (*SQLiteStore)(nil)
	_ core.MessageStore = (*MySQLStore)(nil)
	_ core.MessageStore = (*PostgresStore)(nil)
	_ core.MessageStore = (*MongoStore)(nil)
)
