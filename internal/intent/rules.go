package intent

import "regexp"

// priority is the order in which task tags are tried. When two tags match
// the same clause the earlier one wins.
var priority = []Tag{
	TagSystemExec,
	TagScheduleAdd,
	TagFolderCreate,
	TagFileCreate,
	TagFileDelete,
	TagFileRead,
	TagFileSearch,
	TagFileList,
}

// Capture group names understood by the extractors.
const (
	grpPath    = "path"
	grpContent = "content"
	grpQuery   = "query"
	grpLine    = "line"
	grpKind    = "kind"
	grpRest    = "rest"
)

const withContent = `(?:\s+(?:with|containing)(?:\s+(?:the\s+)?(?:content|contents|text))?\s+(?P<content>.*))?`

// rules are anchored at the start of a clause and matched case-insensitively.
var rules = map[Tag][]*regexp.Regexp{
	TagSystemExec: {
		regexp.MustCompile(`(?i)^(?:run|execute)(?:\s+(?:the\s+)?command)?\s+(?P<line>.+)$`),
		regexp.MustCompile(`(?i)^system\s+(?P<line>.+)$`),
	},
	TagScheduleAdd: {
		regexp.MustCompile(`(?i)^(?:schedule|add|create|book|set\s+up)\s+(?:a\s+|an\s+|new\s+)*(?P<kind>meeting|event|appointment|reminder|call)(?:\s+(?P<rest>.*))?$`),
		regexp.MustCompile(`(?i)^remind\s+me\s+(?:to|about)\s+(?P<rest>.+)$`),
	},
	TagFolderCreate: {
		regexp.MustCompile(`(?i)^(?:create|make)\s+(?:a\s+)?(?:new\s+)?(?:folder|directory|dir)(?:\s+(?:called|named))?\s+(?P<path>\S+)$`),
		regexp.MustCompile(`(?i)^mkdir\s+(?:-p\s+)?(?P<path>\S+)$`),
	},
	TagFileCreate: {
		regexp.MustCompile(`(?i)^(?:create|make|write)\s+(?:a\s+)?(?:new\s+)?file(?:\s+(?:called|named))?\s+(?P<path>\S+)` + withContent + `$`),
		regexp.MustCompile(`(?i)^(?:create|touch)\s+(?P<path>\S+\.\w+)` + withContent + `$`),
	},
	TagFileDelete: {
		regexp.MustCompile(`(?i)^(?:delete|remove|rm)\s+(?:the\s+)?(?:file\s+)?(?P<path>\S+)$`),
	},
	TagFileRead: {
		regexp.MustCompile(`(?i)^(?:read|open|show|display|print)\s+(?:me\s+)?(?:the\s+)?(?:file|contents\s+of)\s+(?P<path>\S+)$`),
		regexp.MustCompile(`(?i)^(?:read|cat)\s+(?P<path>\S+)$`),
	},
	TagFileSearch: {
		regexp.MustCompile(`(?i)^(?:search|look)\s+for\s+(?:files?\s+)?(?:named\s+|called\s+)?(?P<query>\S+)$`),
		regexp.MustCompile(`(?i)^find\s+(?:files?\s+)?(?:named\s+|called\s+)?(?P<query>\S+)$`),
	},
	TagFileList: {
		regexp.MustCompile(`(?i)^(?:list|ls|show(?:\s+me)?)\s+(?:all\s+)?(?:the\s+)?files(?:\s+in\s+(?:this\s+(?:folder|directory)|here|(?:the\s+)?(?:folder\s+|directory\s+)?(?P<path>\S+)))?$`),
		regexp.MustCompile(`(?i)^what\s+files\s+are\s+(?:there|here|in\s+(?:this\s+(?:folder|directory)|(?:the\s+)?(?:folder\s+|directory\s+)?(?P<path>\S+)))$`),
		regexp.MustCompile(`(?i)^(?:list|ls)(?:\s+(?:the\s+)?(?:contents\s+of\s+)?(?:folder\s+|directory\s+)?(?P<path>\S+))?$`),
	},
}

// clauseBreak separates compound requests such as "x and then y".
var clauseBreak = regexp.MustCompile(`(?i)(?:\s*[,;]\s*|\s+)(?:and\s+then|and|then|also)\s+`)

// politeness is stripped from the front of a clause before matching.
var politeness = regexp.MustCompile(`(?i)^(?:(?:please|kindly|nyx,?|hey,?|(?:can|could|would|will)\s+you)\s+)+`)

// pleaseSuffix is stripped from the end of an utterance.
var pleaseSuffix = regexp.MustCompile(`(?i)\s*,?\s+please$`)
