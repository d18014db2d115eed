package folder

import (
	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	domain "filevault-api/internal/domain/folder"
	"filevault-api/internal/interface/api/rest/dto/file"
)

func ToResponseFolder(f domain.Folder) Folder {
	return Folder{
		UUID:      f.UUID,
		OwnerID:   f.OwnerID,
		ParentID:  f.ParentID,
		Name:      f.Name,
		Path:      f.Path,
		CreatedAt: f.CreatedAt,
	}
}

func ToResponseFolders(fs domain.Folders) Folders {
	out := make(Folders, len(fs))
	for idx, f := range fs {
		out[idx] = ToResponseFolder(*f)
	}
	return out
}

func ToResponsePermissions(p access.Permissions) Permissions {
	return Permissions{View: p.View, Edit: p.Edit, Delete: p.Delete, Reshare: p.Reshare}
}

func ToResponseContent(c ports.FolderContent) Content {
	out := Content{
		Folders: ToResponseFolders(c.Folders),
		Files:   file.ToResponseFiles(c.Files),
	}
	// the virtual root has no folder and no grant
	if c.Folder != nil {
		f := ToResponseFolder(*c.Folder)
		p := ToResponsePermissions(c.Access.Permissions)
		out.Folder = &f
		out.Owner = c.Access.Owner
		out.Permissions = &p
	}
	return out
}

func ToDomainPlacement(r UpdateRequest) domain.Placement {
	return domain.Placement{Name: r.Name, ParentID: r.ParentID, ToRoot: r.ToRoot}
}
