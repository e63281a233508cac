package exam

import (
	"fmt"
	"strings"
)

// buildSegmentPrompt returns the exam-paper segmentation prompt. The model
// must answer with a single JSON object holding a questions array; every
// other instruction exists to keep that reply resolvable against the
// supplied image filenames and tag vocabulary.
func buildSegmentPrompt(transcript string, imageFilenames, vocabulary []string) string {
	var b strings.Builder

	b.WriteString("请分析以下试卷内容，提取所有题目并格式化为LaTeX格式。\n\n")
	b.WriteString("试卷内容：\n")
	b.WriteString(transcript)
	b.WriteString("\n\n请按以下要求处理：\n")
	b.WriteString("1. 去除OCR识别中的明显噪声和不合理内容\n")
	b.WriteString("2. 识别并分离每道题目\n")
	b.WriteString("3. 将题目内容转换为LaTeX格式，选择题选项优先使用enumerate环境\n")

	if len(imageFilenames) > 0 {
		fmt.Fprintf(&b, "4. 题目引用图片时，只能使用以下文件名：%s\n", strings.Join(imageFilenames, ", "))
	} else {
		b.WriteString("4. 本试卷没有图片，image字段一律返回空数组\n")
	}

	fmt.Fprintf(&b, "5. 从以下标签中为每道题目选择1-3个最符合的标签：%s\n", strings.Join(vocabulary, ", "))
	b.WriteString("6. 为每道题目生成详细的参考解答\n")
	b.WriteString("7. 严格按JSON格式回复，不要输出JSON以外的任何内容\n")

	b.WriteString(`
请按以下JSON格式回复：
{
    "questions": [
        {
            "question": "LaTeX格式的题目内容",
            "image": ["图片文件名"],
            "tags": ["标签1", "标签2"],
            "answer": "详细的参考解答"
        }
    ]
}
`)
	return b.String()
}

// buildAnnotatePrompt returns the single-question tagging prompt. The reply
// is one JSON object, not an array.
func buildAnnotatePrompt(latexContent, source string, vocabulary []string) string {
	provenance := ""
	if source != "" {
		provenance = fmt.Sprintf("\n题目来源：%s\n", source)
	}
	return fmt.Sprintf(`请分析以下高考数学题目，并完成以下任务：

1. 将题目内容规范为LaTeX格式，选择题选项优先使用enumerate环境
2. 从以下标签中选择1-3个最符合的标签：%s
3. 生成详细的参考解答

题目内容：
%s
%s
请按以下JSON格式回复：
{
    "latex_content": "LaTeX格式的题目内容",
    "tags": ["标签1", "标签2"],
    "answer": "详细的参考解答，包含解题步骤和最终答案"
}
`, strings.Join(vocabulary, ", "), latexContent, provenance)
}
