package testimage

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
)

const (
	typeBootRecord    = 0
	typePrimary       = 1
	typeSupplementary = 2
	typePartition     = 3
	typeTerminator    = 255
)

func (b *builder) writeDescriptors(primary, joliet []*dirLayout) error {
	lba := consts.ISO9660_SYSTEM_AREA_SECTORS

	next := func() []byte {
		buf := b.image.Bytes[lba*blockSize : (lba+1)*blockSize]
		lba++
		return buf
	}

	if b.opts.BootRecord {
		buf := next()
		header(buf, typeBootRecord)
		copy(buf[7:39], "EL TORITO SPECIFICATION")
		binary.LittleEndian.PutUint32(buf[71:75], b.image.BootCatalog)
	}
	if !b.opts.OmitPrimary {
		if err := b.writeTable(next(), typePrimary, encoding.Iso9660, primary[0]); err != nil {
			return fmt.Errorf("failed to write primary descriptor: %w", err)
		}
	}
	if b.opts.Joliet {
		if err := b.writeTable(next(), typeSupplementary, encoding.Ucs2Level3, joliet[0]); err != nil {
			return fmt.Errorf("failed to write supplementary descriptor: %w", err)
		}
	}
	if b.opts.UnknownDescriptor {
		header(next(), typePartition)
	}
	header(next(), typeTerminator)
	return nil
}

func header(buf []byte, typ byte) {
	buf[0] = typ
	copy(buf[1:6], consts.ISO9660_STD_IDENTIFIER)
	buf[6] = consts.ISO9660_VOLUME_DESC_VERSION
}

// putString writes s into a fixed-width field padded with spaces in the field's encoding.
func putString(dst []byte, s string, enc encoding.CharacterEncoding) error {
	if enc.IsJoliet() {
		raw, err := encoding.EncodeUCS2BigEndian(s)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(dst); i += 2 {
			dst[i], dst[i+1] = 0x00, ' '
		}
		copy(dst, raw)
		return nil
	}
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
	return nil
}

func (b *builder) writeTable(buf []byte, typ byte, enc encoding.CharacterEncoding, root *dirLayout) error {
	header(buf, typ)

	fields := []struct {
		start, end int
		value      string
	}{
		{8, 40, "LINUX"},
		{40, 72, b.opts.VolumeIdentifier},
		{190, 318, "SET"},
		{318, 446, "PUBLISHER"},
		{446, 574, "PREPARER"},
		{574, 702, "ISOFS TESTIMAGE"},
		{702, 739, "COPYING.TXT"},
		{739, 776, "ABSTRACT.TXT"},
		{776, 813, "BIBLIO.TXT"},
	}
	for _, s := range fields {
		if err := putString(buf[s.start:s.end], s.value, enc); err != nil {
			return err
		}
	}

	space := encoding.MarshalBothByteOrders32(uint32(len(b.image.Bytes) / blockSize))
	copy(buf[80:88], space[:])
	escapes := enc.Escapes()
	copy(buf[88:120], escapes[:])
	setSize := encoding.MarshalBothByteOrders16(1)
	copy(buf[120:124], setSize[:])
	seq := encoding.MarshalBothByteOrders16(1)
	copy(buf[124:128], seq[:])
	lbs := encoding.MarshalBothByteOrders16(b.opts.LogicalBlockSize)
	copy(buf[128:132], lbs[:])

	rootRecord, err := b.record(root.lba, root.size, directory.FileFlags{Directory: true}, root.node, []byte{0x00})
	if err != nil {
		return err
	}
	copy(buf[156:190], rootRecord)

	created, err := encoding.MarshalDateTime(b.opts.Time)
	if err != nil {
		return err
	}
	copy(buf[813:830], created[:])
	copy(buf[830:847], created[:])
	unspecified, _ := encoding.MarshalDateTime(time.Time{})
	copy(buf[847:864], unspecified[:])
	copy(buf[864:881], created[:])
	buf[881] = 1
	return nil
}
