package convert

import "cvconvert-backend/internal/cv"

// reconcile merges the styled record with the raw extraction, treating the raw
// record as ground truth for bullet enumeration completeness. For every
// experience entry where the styled bullet list shrank, the raw list is
// restored in full. Equal or grown lists pass through untouched, as do styled
// entries without a raw counterpart.
//
// This is a length-only heuristic: it cannot detect wording corruption that
// preserves count.
func reconcile(raw, styled cv.Record) cv.Record {
	final := styled
	final.Experience = make([]cv.Experience, len(styled.Experience))
	copy(final.Experience, styled.Experience)

	for i := range final.Experience {
		if i >= len(raw.Experience) {
			break
		}
		rawBullets := raw.Experience[i].Bullets
		if len(rawBullets) > len(final.Experience[i].Bullets) {
			final.Experience[i].Bullets = append([]string(nil), rawBullets...)
		}
	}

	return final
}
