// Package saveblob persists a player's progress as a single encrypted,
// compressed and checksummed file, with a secondary preference store used
// when the file cannot be written or read.
//
// A [Blob] holds the state of one identity. Subsystems read and write it
// through dotted keys, usually via the scoped facade in the system
// subpackage, and call [Blob.Save] and [Blob.Load] to move it to and from
// storage.
//
// # Quick Start
//
//	b, err := saveblob.New("user42", saveblob.WithDir(dir))
//	if err != nil {
//	    return err
//	}
//	if err := b.Set("level", tree.Int(7)); err != nil {
//	    return err
//	}
//	state, err := b.Save()
//	if state != saveblob.SaveOK {
//	    log.Printf("save: %s: %v", state, err)
//	}
//
// Load it back into a fresh Blob:
//
//	b, _ := saveblob.New("user42", saveblob.WithDir(dir))
//	if state, err := b.Load(); state != saveblob.LoadOK {
//	    return err
//	}
//	level := b.Get("level").AsInt(0)
//
// # File Format
//
// Every save file occupies exactly 1 MiB. It holds a little-endian length
// prefix, a version record, a content header carrying the MD5 digest and
// length of the content, and the content itself: the payload JSON
// compressed with zstd and encrypted with AES-128-CBC under key material
// derived from the identity. The remainder of the file is zero padding.
//
// # Fallback Store
//
// When the primary file cannot be written, Save stores the frame in a
// [prefs.Store] under "Save.<identity>.sav". When the primary file is
// missing or unreadable, Load tries that entry before reporting failure.
// A successful primary write removes the entry.
package saveblob
