// Package spartn parses SPARTN (Secure Position Augmentation for
// Real-Time Navigation) correction messages from a binary stream, such
// as those delivered over an MQTT /pp/ip topic.
//
// The package covers three tightly coupled layers:
//
//   - the transport framer, which delimits and checksums SPARTN
//     frames of variable length depending on encryption, time-tag and
//     CRC-type bits in the frame header;
//   - the payload decryptor, AES-128 in counter mode, applied when the
//     frame's encryption-and-authentication flag is set;
//   - the payload interpreter, which walks a recursive, table-driven
//     schema against the decrypted payload and produces a flat Record
//     of named fields covering Orbit/Clock/Bias (OCB), High-Precision
//     Atmosphere Correction (HPAC), Geographic Area Definition (GAD)
//     and auxiliary message families across GPS, GLONASS, Galileo,
//     BeiDou and QZSS.
//
// Producing or serializing SPARTN frames, demultiplexing other GNSS
// protocols from the same stream, and scientific validation of decoded
// field values are all out of scope.
package spartn
