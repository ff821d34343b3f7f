// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"bytes"
	"encoding/xml"
	"text/template"
)

// Namespaces and relationship types used in the package parts.
const (
	nsA  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsPR = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDoc   = nsR + "/officeDocument"
	relCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtProps    = nsR + "/extended-properties"
	relSlideMaster = nsR + "/slideMaster"
	relSlideLayout = nsR + "/slideLayout"
	relSlide       = nsR + "/slide"
	relTheme       = nsR + "/theme"
	relImage       = nsR + "/image"
	relPresProps   = nsR + "/presProps"
	relViewProps   = nsR + "/viewProps"
	relTableStyles = nsR + "/tableStyles"
)

// Slide relationship IDs in ppt/_rels/presentation.xml.rels start after the
// five fixed parts (master, theme, presProps, viewProps, tableStyles).
const (
	firstSlideRID = 6
	firstSlideID  = 256
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var partFuncs = template.FuncMap{
	"xml": func(s string) string {
		var b bytes.Buffer
		xml.EscapeText(&b, []byte(s))
		return b.String()
	},
}

func mustPart(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(partFuncs).Parse(xmlHeader + body))
}

// grpSpPr is the empty group shape header every shape tree starts with.
const grpSpPr = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

var contentTypesTmpl = mustPart("[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="jpeg" ContentType="image/jpeg"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>
<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>
<Override PartName="/ppt/viewProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"/>
<Override PartName="/ppt/tableStyles.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"/>
{{- range .Slides}}
<Override PartName="/ppt/slides/slide{{.Number}}.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
{{- end}}
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
</Types>
`)

var rootRelsTmpl = mustPart("_rels/.rels", `<Relationships xmlns="`+nsPR+`">
<Relationship Id="rId1" Type="`+relOfficeDoc+`" Target="ppt/presentation.xml"/>
<Relationship Id="rId2" Type="`+relCoreProps+`" Target="docProps/core.xml"/>
<Relationship Id="rId3" Type="`+relExtProps+`" Target="docProps/app.xml"/>
</Relationships>
`)

var coreTmpl = mustPart("docProps/core.xml", `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>{{xml .Title}}</dc:title>
<dc:creator>slidedeck</dc:creator>
<cp:revision>1</cp:revision>
<dcterms:created xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:created>
<dcterms:modified xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:modified>
</cp:coreProperties>
`)

var appTmpl = mustPart("docProps/app.xml", `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">
<Application>slidedeck</Application>
<PresentationFormat>On-screen Show (16:9)</PresentationFormat>
<Slides>{{len .Slides}}</Slides>
</Properties>
`)

var presentationTmpl = mustPart("ppt/presentation.xml", `<p:presentation xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`" saveSubsetFonts="1">
<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>
<p:sldIdLst>
{{- range .Slides}}
<p:sldId id="{{.ID}}" r:id="rId{{.RelID}}"/>
{{- end}}
</p:sldIdLst>
<p:sldSz cx="{{.Canvas.Width}}" cy="{{.Canvas.Height}}"/>
<p:notesSz cx="6858000" cy="9144000"/>
</p:presentation>
`)

var presentationRelsTmpl = mustPart("ppt/_rels/presentation.xml.rels", `<Relationships xmlns="`+nsPR+`">
<Relationship Id="rId1" Type="`+relSlideMaster+`" Target="slideMasters/slideMaster1.xml"/>
<Relationship Id="rId2" Type="`+relTheme+`" Target="theme/theme1.xml"/>
<Relationship Id="rId3" Type="`+relPresProps+`" Target="presProps.xml"/>
<Relationship Id="rId4" Type="`+relViewProps+`" Target="viewProps.xml"/>
<Relationship Id="rId5" Type="`+relTableStyles+`" Target="tableStyles.xml"/>
{{- range .Slides}}
<Relationship Id="rId{{.RelID}}" Type="`+relSlide+`" Target="slides/slide{{.Number}}.xml"/>
{{- end}}
</Relationships>
`)

var presPropsTmpl = mustPart("ppt/presProps.xml", `<p:presentationPr xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`"/>
`)

var viewPropsTmpl = mustPart("ppt/viewProps.xml", `<p:viewPr xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">
<p:gridSpacing cx="76200" cy="76200"/>
</p:viewPr>
`)

var tableStylesTmpl = mustPart("ppt/tableStyles.xml", `<a:tblStyleLst xmlns:a="`+nsA+`" def="{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"/>
`)

var masterTmpl = mustPart("ppt/slideMasters/slideMaster1.xml", `<p:sldMaster xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">
<p:cSld>
<p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>
<p:spTree>`+grpSpPr+`</p:spTree>
</p:cSld>
<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>
<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>
<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>
</p:sldMaster>
`)

var masterRelsTmpl = mustPart("ppt/slideMasters/_rels/slideMaster1.xml.rels", `<Relationships xmlns="`+nsPR+`">
<Relationship Id="rId1" Type="`+relSlideLayout+`" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="`+relTheme+`" Target="../theme/theme1.xml"/>
</Relationships>
`)

// layoutTmpl is the blank layout: no placeholders.
var layoutTmpl = mustPart("ppt/slideLayouts/slideLayout1.xml", `<p:sldLayout xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`" type="blank" preserve="1">
<p:cSld name="Blank">
<p:spTree>`+grpSpPr+`</p:spTree>
</p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>
`)

var layoutRelsTmpl = mustPart("ppt/slideLayouts/_rels/slideLayout1.xml.rels", `<Relationships xmlns="`+nsPR+`">
<Relationship Id="rId1" Type="`+relSlideMaster+`" Target="../slideMasters/slideMaster1.xml"/>
</Relationships>
`)

var themeTmpl = mustPart("ppt/theme/theme1.xml", `<a:theme xmlns:a="`+nsA+`" name="Office Theme">
<a:themeElements>
<a:clrScheme name="Office">
<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>
<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>
<a:dk2><a:srgbClr val="1F497D"/></a:dk2>
<a:lt2><a:srgbClr val="EEECE1"/></a:lt2>
<a:accent1><a:srgbClr val="4F81BD"/></a:accent1>
<a:accent2><a:srgbClr val="C0504D"/></a:accent2>
<a:accent3><a:srgbClr val="9BBB59"/></a:accent3>
<a:accent4><a:srgbClr val="8064A2"/></a:accent4>
<a:accent5><a:srgbClr val="4BACC6"/></a:accent5>
<a:accent6><a:srgbClr val="F79646"/></a:accent6>
<a:hlink><a:srgbClr val="0000FF"/></a:hlink>
<a:folHlink><a:srgbClr val="800080"/></a:folHlink>
</a:clrScheme>
<a:fontScheme name="Office">
<a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
</a:fontScheme>
<a:fmtScheme name="Office">
<a:fillStyleLst>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
</a:fillStyleLst>
<a:lnStyleLst>
<a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
<a:ln w="25400"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
<a:ln w="38100"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
</a:lnStyleLst>
<a:effectStyleLst>
<a:effectStyle><a:effectLst/></a:effectStyle>
<a:effectStyle><a:effectLst/></a:effectStyle>
<a:effectStyle><a:effectLst/></a:effectStyle>
</a:effectStyleLst>
<a:bgFillStyleLst>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
</a:bgFillStyleLst>
</a:fmtScheme>
</a:themeElements>
<a:objectDefaults/>
<a:extraClrSchemeLst/>
</a:theme>
`)

var slideTmpl = mustPart("ppt/slides/slide.xml", `<p:sld xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`">
<p:cSld>
<p:spTree>`+grpSpPr+`
<p:pic>
<p:nvPicPr><p:cNvPr id="2" name="Picture {{.Number}}" descr="{{xml .Source}}"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>
<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>
<p:spPr><a:xfrm><a:off x="{{.Placement.X}}" y="{{.Placement.Y}}"/><a:ext cx="{{.Placement.Width}}" cy="{{.Placement.Height}}"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>
</p:pic>
</p:spTree>
</p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sld>
`)

var slideRelsTmpl = mustPart("ppt/slides/_rels/slide.xml.rels", `<Relationships xmlns="`+nsPR+`">
<Relationship Id="rId1" Type="`+relSlideLayout+`" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="`+relImage+`" Target="../media/{{.MediaName}}"/>
</Relationships>
`)
