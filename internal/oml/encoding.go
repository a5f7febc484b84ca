// Package oml implements the post-processing/enrichment language that runs
// after a WPL rule produces a DataRecord: bindings, record operations with
// knowledge-cache lookups, string interpolation and pipe transforms.
package oml

// Encoding enumerates the base64_de decode target charset. Go's standard
// library only round-trips UTF-8 natively; the remaining members are
// carried for type-safety/config-compat and treated as UTF-8 passthrough
// until a real codec table is wired in.
type Encoding int

const (
	Utf8 Encoding = iota
	Utf16le
	Utf16be
	Windows949
	EucJp
	Windows31j
	Iso2022Jp
	Gbk
	Gb18030
	HZ
	Big52003
	MacCyrillic
	Windows874
	Windows1250
	Windows1251
	Windows1252
	Windows1253
	Windows1254
	Windows1255
	Windows1256
	Windows1257
	Windows1258
	Ascii
	Ibm866
	Iso88591
	Iso88592
	Iso88593
	Iso88594
	Iso88595
	Iso88596
	Iso88597
	Iso88598
	Iso885910
	Iso885913
	Iso885914
	Iso885915
	Iso885916
	Koi8R
	Koi8U
	MacRoman
	Imap
)

var encodingNames = map[Encoding]string{
	Utf8: "Utf8", Utf16le: "Utf16le", Utf16be: "Utf16be", Windows949: "Windows949",
	EucJp: "EucJp", Windows31j: "Windows31j", Iso2022Jp: "Iso2022Jp", Gbk: "Gbk",
	Gb18030: "Gb18030", HZ: "HZ", Big52003: "Big52003", MacCyrillic: "MacCyrillic",
	Windows874: "Windows874", Windows1250: "Windows1250", Windows1251: "Windows1251",
	Windows1252: "Windows1252", Windows1253: "Windows1253", Windows1254: "Windows1254",
	Windows1255: "Windows1255", Windows1256: "Windows1256", Windows1257: "Windows1257",
	Windows1258: "Windows1258", Ascii: "Ascii", Ibm866: "Ibm866", Iso88591: "Iso88591",
	Iso88592: "Iso88592", Iso88593: "Iso88593", Iso88594: "Iso88594", Iso88595: "Iso88595",
	Iso88596: "Iso88596", Iso88597: "Iso88597", Iso88598: "Iso88598", Iso885910: "Iso885910",
	Iso885913: "Iso885913", Iso885914: "Iso885914", Iso885915: "Iso885915", Iso885916: "Iso885916",
	Koi8R: "Koi8R", Koi8U: "Koi8U", MacRoman: "MacRoman", Imap: "Imap",
}

func (e Encoding) String() string {
	if s, ok := encodingNames[e]; ok {
		return s
	}
	return "Utf8"
}
