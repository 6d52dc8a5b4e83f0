package exercise

import "strings"

// abbreviations maps gym shorthand tokens to their expansions. Applied
// per whitespace-separated token after lowercasing, before slugging, so
// "DB Bench Press" and "dumbbell bench press" share one slug.
var abbreviations = map[string]string{
	"db":   "dumbbell",
	"bb":   "barbell",
	"kb":   "kettlebell",
	"rdl":  "romanian deadlift",
	"sldl": "stiff leg deadlift",
	"ohp":  "overhead press",
	"bp":   "bench press",
	"dl":   "deadlift",
	"hspu": "handstand push up",
	"ghr":  "glute ham raise",
	"bw":   "bodyweight",
	"alt":  "alternating",
	"sl":   "single leg",
	"sa":   "single arm",
}

// Normalize lowercases, trims, collapses whitespace, and expands known
// abbreviations. The result is display-oriented; Slugify turns it into
// the dedup key.
func Normalize(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if exp, ok := abbreviations[f]; ok {
			out = append(out, exp)
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// Slugify maps a normalized name to its canonical slug: runs of anything
// outside [a-z0-9] become single hyphens, edges trimmed. Two names
// normalizing to the same slug always resolve to the same identity.
func Slugify(normalized string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SlugOf is the full name→slug path used everywhere identity is keyed.
func SlugOf(name string) string {
	return Slugify(Normalize(name))
}
