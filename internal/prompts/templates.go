package prompts

const placeholder = "{{document_text}}"

const calculationStyle = `Present calculations in simple format, like "Gross Profit Margin = $1.9M / $4.8M = 39.58%".
Do NOT use LaTeX formatting or backslashes.`

const financialStatementsTemplate = `You are a senior financial analyst. Analyze ONLY the financial statements in the document below
(income statement, balance sheet, cash flow statement). Ignore narrative sections.
` + calculationStyle + `

Respond with HTML only. Do not use markdown and do not wrap the answer in code fences.
Use this structure:
<h3>Key Financial Metrics</h3>
<table> with columns: Metric | Current Period | Prior Period | Change (%)
<h3>Profitability Ratios</h3>
<table> with columns: Ratio | Calculation | Value
<h3>Liquidity and Leverage</h3>
<table> with columns: Ratio | Calculation | Value
<h3>Cash Flow Summary</h3>
<table> with columns: Category | Amount | Comment
<h3>Observations</h3>
<ul> with 3 to 5 <li> items

Document Text:
{{document_text}}

Only use figures that appear in the document. Write "n/a" in a cell when a value cannot be determined.`

const managementCommentaryTemplate = `You are a senior financial analyst. Analyze the management commentary (MD&A, letter to
shareholders, outlook statements) in the document below.
` + calculationStyle + `

Structure the answer with these sections:

1. Strategic Priorities:
   - Stated goals and initiatives
   - Capital allocation plans

2. Tone and Confidence:
   - Overall tone of management
   - Hedging or cautious language

3. Guidance and Outlook:
   - Forward-looking statements
   - Quantified targets, if any

4. Notable Omissions:
   - Topics management avoids or mentions only briefly

Document Text:
{{document_text}}

Use short bullet points under each section. Quote the document where it supports a point.`

const riskFactorsTemplate = `You are a senior risk analyst. Identify and assess the risk factors disclosed in the document below.
` + calculationStyle + `

Structure the answer with these sections:

1. Financial Risks:
   - Leverage, liquidity and refinancing
   - Currency and interest rate exposure

2. Operational Risks:
   - Supply chain, key customers, concentration
   - Execution and technology risks

3. Regulatory and Legal Risks:
   - Pending litigation
   - Regulatory changes

4. Market and Competitive Risks:
   - Demand, pricing pressure, competition

5. Overall Risk Rating:
   - Low, Medium or High, with a one paragraph justification

Document Text:
{{document_text}}

List the most material risk first in each section.`

const commentaryVsPerformanceTemplate = `You are a senior financial analyst. Compare what management says in the document below with what
the reported numbers show.
` + calculationStyle + `

Structure the answer with these sections:

1. Claims vs. Results:
   - For each major management claim, the supporting or contradicting figures

2. Consistency Check:
   - Where commentary and performance agree
   - Where commentary is more optimistic than the numbers

3. Key Metrics Referenced:
   - Revenue, margins, cash flow, guidance versus actuals

4. Credibility Assessment:
   - Overall assessment of how well commentary reflects performance

Document Text:
{{document_text}}

Provide specific numbers and percentages wherever possible.`

const comparisonTemplate = `Compare these two financial statements and provide structured analysis:

1. Key Metrics Comparison:
   - Revenue comparison
   - Profit metrics
   - Key ratios

2. Major Changes:
   - Significant increases
   - Notable decreases
   - Important shifts

3. Performance Analysis:
   - Overall health comparison
   - Risk assessment
   - Opportunity areas

Statement 1 ({{period1}}):
{{text1}}

Statement 2 ({{period2}}):
{{text2}}

Provide analysis in clear, structured format with numbers and percentages.`
