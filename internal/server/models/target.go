package models

// TargetKind discriminates entries of a bulk move/delete target list.
type TargetKind string

const (
	TargetFile   TargetKind = "file"
	TargetFolder TargetKind = "folder"
)

// Target is one caller-supplied element of a heterogeneous target list.
// Target lists are transient; they are partitioned by kind before use and
// never persisted.
type Target struct {
	ID   int64      `json:"id"`
	Kind TargetKind `json:"type"`
}

// PartitionTargets splits a target list into file ids and folder ids,
// preserving order. Unknown kinds are dropped.
func PartitionTargets(targets []Target) (fileIDs, folderIDs []int64) {
	for _, t := range targets {
		switch t.Kind {
		case TargetFile:
			fileIDs = append(fileIDs, t.ID)
		case TargetFolder:
			folderIDs = append(folderIDs, t.ID)
		}
	}
	return fileIDs, folderIDs
}
