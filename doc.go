// Package marytreat post-processes DITA projects exported from Word or
// authored in a CMS.
//
// A project is a folder holding one ditamap, the topics it references and,
// for CMS projects, one .3sish metadata file per topic. Opening a project
// reads the map, pairs topics with their metadata, detects the image folder
// and classifies every topic by its outputclass.
//
// Operations:
//
//   - Rename topic files after their titles, updating links, the map and ISH files.
//   - Rename images after their figure titles.
//   - Fill boilerplate short descriptions.
//   - Cast Word topics to concept, task or reference.
//   - Wrap bare images in figures and drop task contexts of procedures.
//   - Create a root concept that holds every topic of the map.
//
// When the folder is a Git work tree, changes are staged and each operation
// ends with a commit.
//
// Usage:
//
//	p, err := marytreat.Open(ctx, "./manual", "",
//		marytreat.WithVersioning(false),
//		marytreat.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	_, err = p.RenameTopics(ctx)
//
// The releasenotes package handles the Markdown release notes of a project.
package marytreat
