// Package task defines the task record and the helpers that order,
// dedupe, and validate task collections.
//
// The task file (tasks.json) is a JSON array of records:
//
//	[
//	    {
//	        "id": 1,
//	        "description": "Buy milk",
//	        "status": "todo",
//	        "createdAt": "2024-01-01T09:30:00.123456789+01:00",
//	        "updatedAt": "2024-01-01T09:30:00.123456789+01:00"
//	    }
//	]
//
// # Legacy shapes
//
// Files written by hand or by earlier versions are accepted on read and
// rewritten in the shape above on the next save:
//   - "id" as a numeric string ("3") becomes the integer 3
//   - "description" as a list of strings is joined with ", "
//   - "created_at" is used when "createdAt" is absent
//   - timestamps without a UTC offset are read in local time
//
// Identifiers that are not numeric at all are preserved verbatim. They
// never take part in next-id computation and sort after numeric ones.
//
// Values of an unexpected type or layout are kept rather than rejected: a
// timestamp no layout accepts is written back as it was read, a non-string
// status or description keeps its JSON text, and a record without an id
// stays in the file. Only content that is not JSON fails to load.
//
// # Status Values
//
//   - "todo": not started (default for new tasks)
//   - "in-progress": being worked on
//   - "done": complete
//
// Status is only checked when a task is updated; a file holding other
// values still loads. The doctor command reports them.
package task
