package frontmatter

// Command is the remote operation a parsed file calls for.
type Command string

const (
	CommandCreate Command = "create"
	CommandUpdate Command = "update"
)

// Resolve returns CommandUpdate when the record carries a post id and
// CommandCreate otherwise.
func Resolve(fm *FrontMatter) Command {
	if fm != nil && fm.PostID != "" {
		return CommandUpdate
	}
	return CommandCreate
}
