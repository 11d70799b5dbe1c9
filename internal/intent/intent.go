// Package intent classifies free-text utterances into a closed set of
// intents and extracts validated slots for the dispatcher.
package intent

// Tag is the closed set of intents.
type Tag string

const (
	TagChat         Tag = "chat"
	TagFileCreate   Tag = "file.create"
	TagFileRead     Tag = "file.read"
	TagFileDelete   Tag = "file.delete"
	TagFileList     Tag = "file.list"
	TagFileSearch   Tag = "file.search"
	TagFolderCreate Tag = "folder.create"
	TagScheduleAdd  Tag = "schedule.add"
	TagSystemExec   Tag = "system.exec"
	TagUnknown      Tag = "unknown"
)

// Slot names.
const (
	SlotPath    = "path"
	SlotContent = "content"
	SlotQuery   = "query"
	SlotCommand = "command"
	SlotArgs    = "args"
	SlotTitle   = "title"
	SlotWhen    = "when"
)

// IsTask reports whether t is routed to the dispatcher rather than to
// generation.
func (t Tag) IsTask() bool {
	switch t {
	case TagFileCreate, TagFileRead, TagFileDelete, TagFileList, TagFileSearch,
		TagFolderCreate, TagScheduleAdd, TagSystemExec:
		return true
	}
	return false
}

// Intent is a classified utterance. Slot values are strings except args,
// which is a []string argument vector. when is an RFC3339 instant.
type Intent struct {
	Tag   Tag
	Slots map[string]any
}

// Slot returns a string slot or "".
func (i Intent) Slot(name string) string {
	s, _ := i.Slots[name].(string)
	return s
}
