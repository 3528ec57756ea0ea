// Package setlist extracts song titles from concert setlist pages.
//
// setlist.fm renders a setlist as an ordered list inside a container
// marked with the "setlistList" class, with each song title in an anchor
// marked "songLabel":
//
//	<div class="setlistList">
//	  <ol>
//	    <li class="setlistParts song">
//	      <div class="songPart"><a class="songLabel" href="...">Song A</a></div>
//	      <div class="infoPart">...</div>
//	    </li>
//	  </ol>
//	</div>
//
// Use Default for that markup:
//
//	titles, err := setlist.Default().Extract(page.Body)
//	if errors.Is(err, setlist.ErrNoSetlist) {
//	    // not a setlist page, or the list is rendered client-side
//	}
//
// Titles are returned exactly as they appear in the document, without
// trimming or deduplication.
package setlist
