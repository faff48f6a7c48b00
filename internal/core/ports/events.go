package ports

// Bus topics published by the core. Payloads are JSON-encoded domain values:
// a document slice for registry replacements, a chat message for transcript
// appends, a notice for transient status lines.
const (
	TopicRegistryReplaced = "registry.replaced"
	TopicChatAppended     = "chat.appended"
	TopicNotice           = "notice"
)
