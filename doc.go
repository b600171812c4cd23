// Package mregion manages memory-mapped regions backed by files or anonymous
// memory.
//
// It creates mappings, changes their access protection, flushes them to
// their backing store and tears them down, on Unix and Windows. It tries to
// provide a simple, reasonably portable interface but doesn't hide platform
// differences that change behavior:
//   - combinations a platform cannot express (rwx pages on openbsd or
//     darwin/arm64) fail with PlatformUnsupported instead of being downgraded
//   - Unmap never flushes; use Flush when the write-back must happen
//   - forked processes may or may not inherit mappings
//   - a file's timestamp may or may not be updated by writes through a mapping
//
// Key features:
//   - Page-rounded regions with explicit Active/Unmapped lifecycle
//   - Protection changes on whole regions or page ranges, with optional W^X
//   - Synchronous and asynchronous flush, single region or all at once
//   - Fault-safe ReadAt/WriteAt that turn access violations into errors
//   - Leak tracking and teardown for debug builds (-tags mregiondebug)
//
// Basic usage:
//
//	f, err := os.OpenFile("data.bin", os.O_RDWR, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	r, err := mregion.Map(4096, mregion.ReadWrite, mregion.Shared, mregion.FromFile(f, 0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Unmap()
//
//	copy(r.Bytes(), "hello")
//	if err := r.Flush(mregion.Synchronous); err != nil {
//	    log.Fatal(err)
//	}
package mregion
